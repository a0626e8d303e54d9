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
	"bytes"
	"debug/elf"
	"errors"
	"fmt"

	"github.com/jetsetilly/romhack/ar"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// object is a single relocatable object taken from the inputs.
type object struct {
	member string
	file   *elf.File

	// symbols as returned by elf.File.Symbols(). symbol index n in a
	// relocation entry refers to symbols[n-1]
	symbols []elf.Symbol

	// indexed by ELF section number. nil for sections that are not loaded
	sections []*inputSection
}

// allocated returns the loadable sections in section order.
func (obj *object) allocated() []*inputSection {
	var secs []*inputSection
	for _, sec := range obj.sections {
		if sec != nil {
			secs = append(secs, sec)
		}
	}
	return secs
}

// relocation is an entry from a SHT_RELA section.
type relocation struct {
	offset uint32
	typ    elf.R_PPC
	symbol uint32
	addend int32
}

// inputSection is a loadable section of an object.
type inputSection struct {
	obj   *object
	name  string
	kind  Kind
	align uint32
	size  uint32

	// nil for bss sections
	data []byte

	relocs []relocation

	live    bool
	placed  bool
	address uint32
}

// symOffset returns the value of the first function or object symbol defined
// in the section.
func (sec *inputSection) symOffset() uint32 {
	for _, sym := range sec.obj.symbols {
		if int(sym.Section) >= len(sec.obj.sections) || sec.obj.sections[sym.Section] != sec {
			continue // for loop
		}
		switch elf.ST_TYPE(sym.Info) {
		case elf.STT_FUNC, elf.STT_OBJECT:
			return uint32(sym.Value)
		}
	}
	return 0
}

// load decodes every input. archive members that are not ELF files are
// ignored.
func load(archives [][]byte) ([]*object, error) {
	var objects []*object

	for i, data := range archives {
		if ar.IsArchive(data) {
			members, err := ar.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			for _, m := range members {
				if !bytes.HasPrefix(m.Data, []byte(elf.ELFMAG)) {
					logger.Logf(logger.Allow, "linker", "skipping archive member %s", m.Name)
					continue // for loop
				}
				obj, err := loadObject(m.Name, m.Data)
				if err != nil {
					return nil, err
				}
				objects = append(objects, obj)
			}
			continue // for loop
		}

		if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
			obj, err := loadObject(fmt.Sprintf("input%d.o", i), data)
			if err != nil {
				return nil, err
			}
			objects = append(objects, obj)
			continue // for loop
		}

		return nil, fmt.Errorf("%w: input %d is neither an archive nor an object", fault.Parse, i)
	}

	return objects, nil
}

func isAllocated(sec *elf.Section) bool {
	if sec.Flags&elf.SHF_ALLOC != elf.SHF_ALLOC {
		return false
	}
	switch sec.Type {
	case elf.SHT_PROGBITS, elf.SHT_NOBITS, elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY, elf.SHT_PREINIT_ARRAY:
		return true
	}
	return false
}

func loadObject(member string, data []byte) (*object, error) {
	ef, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fault.Parse, member, err)
	}

	if ef.Class != elf.ELFCLASS32 || ef.Data != elf.ELFDATA2MSB || ef.Machine != elf.EM_PPC {
		return nil, fmt.Errorf("%w: %s: not a 32bit big-endian PowerPC object (%s %s %s)",
			fault.Parse, member, ef.Class, ef.Data, ef.Machine)
	}
	if ef.Type != elf.ET_REL {
		return nil, fmt.Errorf("%w: %s: not a relocatable object (%s)", fault.Parse, member, ef.Type)
	}

	obj := &object{
		member:   member,
		file:     ef,
		sections: make([]*inputSection, len(ef.Sections)),
	}

	obj.symbols, err = ef.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("%w: %s: %v", fault.Parse, member, err)
	}

	for i, sec := range ef.Sections {
		if !isAllocated(sec) {
			continue // for loop
		}

		in := &inputSection{
			obj:   obj,
			name:  sec.Name,
			align: uint32(sec.Addralign),
			size:  uint32(sec.Size),
		}
		if in.align == 0 {
			in.align = 1
		}

		switch {
		case sec.Type == elf.SHT_NOBITS:
			in.kind = BSS
		case sec.Flags&elf.SHF_EXECINSTR == elf.SHF_EXECINSTR:
			in.kind = Text
		case sec.Flags&elf.SHF_WRITE == elf.SHF_WRITE:
			in.kind = Data
		default:
			in.kind = ReadOnlyData
		}

		if in.kind != BSS {
			in.data, err = sec.Data()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %s: %v", fault.Parse, member, sec.Name, err)
			}
			in.data = append([]byte{}, in.data...)
			in.size = uint32(len(in.data))
		}

		obj.sections[i] = in
	}

	// relocations of loaded sections. relocations of other sections (debug
	// information for example) are not needed
	for _, sec := range ef.Sections {
		if sec.Type != elf.SHT_RELA && sec.Type != elf.SHT_REL {
			continue // for loop
		}
		if int(sec.Info) >= len(obj.sections) || obj.sections[sec.Info] == nil {
			continue // for loop
		}
		target := obj.sections[sec.Info]

		if sec.Type == elf.SHT_REL {
			return nil, fmt.Errorf("%w: %s: %s: unsupported relocation section type (%s)", fault.Parse, member, sec.Name, sec.Type)
		}

		relData, err := sec.Data()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", fault.Parse, member, sec.Name, err)
		}

		for i := 0; i+12 <= len(relData); i += 12 {
			info := ef.ByteOrder.Uint32(relData[i+4:])
			r := relocation{
				offset: ef.ByteOrder.Uint32(relData[i:]),
				typ:    elf.R_PPC(info & 0xff),
				symbol: info >> 8,
				addend: int32(ef.ByteOrder.Uint32(relData[i+8:])),
			}
			if int(r.symbol) > len(obj.symbols) {
				return nil, fmt.Errorf("%w: %s: %s: symbol index %d out of range", fault.Parse, member, sec.Name, r.symbol)
			}
			target.relocs = append(target.relocs, r)
		}
	}

	return obj, nil
}
