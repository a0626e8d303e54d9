// This file is part of Romhack.
//
// Romhack is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Romhack is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Romhack.  If not, see <https://www.gnu.org/licenses/>.

package linker

import (
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/romhack/fault"
)

// relocate applies every relocation of a placed section to its data.
func relocate(sec *inputSection, g *globals, known map[string]uint32) error {
	order := binary.BigEndian

	for _, r := range sec.relocs {
		if r.typ == elf.R_PPC_NONE {
			continue // for loop
		}

		if !supported(r.typ) {
			return fmt.Errorf("%w: %s: %s: unsupported relocation %s (%d)", fault.Parse, sec.obj.member, sec.name, r.typ, uint32(r.typ))
		}

		if sec.data == nil {
			return fmt.Errorf("%w: %s: relocation in %s which has no data", fault.Parse, sec.obj.member, sec.name)
		}

		s, err := symbolAddress(sec.obj, r.symbol, g, known)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", sec.obj.member, sec.name, err)
		}

		// S + A and the address of the relocated field. the addend of a
		// PLTREL24 is the offset of the GOT pointer into .got2 and never part
		// of the branch target
		v := s + uint32(r.addend)
		if r.typ == elf.R_PPC_PLTREL24 {
			v = s
		}
		p := sec.address + r.offset

		width := uint32(4)
		switch r.typ {
		case elf.R_PPC_ADDR16, elf.R_PPC_ADDR16_LO, elf.R_PPC_ADDR16_HI, elf.R_PPC_ADDR16_HA,
			R_PPC_REL16, R_PPC_REL16_LO, R_PPC_REL16_HI, R_PPC_REL16_HA:
			width = 2
		}
		if uint64(r.offset)+uint64(width) > uint64(len(sec.data)) {
			return fmt.Errorf("%w: %s: %s: relocation at %#x is outside the section", fault.Parse, sec.obj.member, sec.name, r.offset)
		}
		field := sec.data[r.offset:]

		overflow := func() error {
			return fmt.Errorf("%w: %s: %s: %s relocation at %#x overflows (value %#08x)",
				fault.Encoding, sec.obj.member, sec.name, r.typ, r.offset, v)
		}

		switch r.typ {
		case elf.R_PPC_ADDR32:
			order.PutUint32(field, v)

		case elf.R_PPC_REL32:
			order.PutUint32(field, v-p)

		case elf.R_PPC_ADDR24:
			if !fitsSigned(v, 26) || v&3 != 0 {
				return overflow()
			}
			order.PutUint32(field, order.Uint32(field)&^0x03fffffc|v&0x03fffffc)

		case elf.R_PPC_REL24, elf.R_PPC_PLTREL24, elf.R_PPC_LOCAL24PC:
			v -= p
			if !fitsSigned(v, 26) || v&3 != 0 {
				return overflow()
			}
			order.PutUint32(field, order.Uint32(field)&^0x03fffffc|v&0x03fffffc)

		case elf.R_PPC_ADDR14:
			if !fitsSigned(v, 16) || v&3 != 0 {
				return overflow()
			}
			order.PutUint32(field, order.Uint32(field)&^0xfffc|v&0xfffc)

		case elf.R_PPC_REL14:
			v -= p
			if !fitsSigned(v, 16) || v&3 != 0 {
				return overflow()
			}
			order.PutUint32(field, order.Uint32(field)&^0xfffc|v&0xfffc)

		case elf.R_PPC_ADDR16:
			if !fitsSigned(v, 16) && v > 0xffff {
				return overflow()
			}
			order.PutUint16(field, uint16(v))

		case elf.R_PPC_ADDR16_LO:
			order.PutUint16(field, uint16(v))

		case elf.R_PPC_ADDR16_HI:
			order.PutUint16(field, uint16(v>>16))

		case elf.R_PPC_ADDR16_HA:
			order.PutUint16(field, uint16((v+0x8000)>>16))

		case R_PPC_REL16:
			v -= p
			if !fitsSigned(v, 16) {
				return overflow()
			}
			order.PutUint16(field, uint16(v))

		case R_PPC_REL16_LO:
			order.PutUint16(field, uint16(v-p))

		case R_PPC_REL16_HI:
			order.PutUint16(field, uint16((v-p)>>16))

		case R_PPC_REL16_HA:
			order.PutUint16(field, uint16((v-p+0x8000)>>16))
		}
	}

	return nil
}

// supported returns true for the relocation types emitted by the compiler
// for the 32bit PowerPC EABI.
func supported(typ elf.R_PPC) bool {
	switch typ {
	case elf.R_PPC_NONE,
		elf.R_PPC_ADDR32, elf.R_PPC_ADDR24, elf.R_PPC_ADDR16,
		elf.R_PPC_ADDR16_LO, elf.R_PPC_ADDR16_HI, elf.R_PPC_ADDR16_HA,
		elf.R_PPC_ADDR14, elf.R_PPC_REL24, elf.R_PPC_PLTREL24,
		elf.R_PPC_LOCAL24PC, elf.R_PPC_REL14, elf.R_PPC_REL32,
		R_PPC_REL16, R_PPC_REL16_LO, R_PPC_REL16_HI, R_PPC_REL16_HA:
		return true
	}
	return false
}

// fitsSigned returns true if v interpreted as a two's complement value can be
// represented in the number of bits.
func fitsSigned(v uint32, bits uint) bool {
	n := int64(int32(v))
	limit := int64(1) << (bits - 1)
	return n >= -limit && n < limit
}

// the R_PPC_REL16 family is not defined by debug/elf. values are those assigned
// by the PowerPC ELF ABI
const (
	R_PPC_REL16    elf.R_PPC = 249
	R_PPC_REL16_LO elf.R_PPC = 250
	R_PPC_REL16_HI elf.R_PPC = 251
	R_PPC_REL16_HA elf.R_PPC = 252
)
