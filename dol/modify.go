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

package dol

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/romhack/assembler"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// AddText adds a new text segment. The segment is placed at the end of the
// file in the first free text slot.
func (f *File) AddText(address uint32, data []byte) error {
	return f.add(Text, address, data)
}

// AddData adds a new data segment. The segment is placed at the end of the
// file in the first free data slot.
func (f *File) AddData(address uint32, data []byte) error {
	return f.add(Data, address, data)
}

func (f *File) add(kind Kind, address uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	n := uint32(len(data))
	if uint64(address)+uint64(n) > 1<<32 {
		return fmt.Errorf("dol: %s segment at %#08x wraps the address space", kind, address)
	}

	for _, k := range []Kind{Text, Data} {
		for i, s := range f.segments(k) {
			if s.overlaps(address, n) {
				return fmt.Errorf("dol: new %s segment %08x-%08x overlaps %s segment %d (%08x-%08x)",
					kind, address, address+n, k, i, s.Address, s.End())
			}
		}
	}

	if overlaps(f.BSSAddress, f.BSSSize, address, n) {
		logger.Logf(logger.Allow, "dol", "new %s segment %08x-%08x overlaps bss", kind, address, address+n)
	}

	slots := f.segments(kind)
	for i := range slots {
		if slots[i].Used() {
			continue // for loop
		}

		offset := f.fileEnd()
		offset = (offset + segmentAlignment - 1) &^ (segmentAlignment - 1)

		slots[i] = Segment{
			Offset:  offset,
			Address: address,
			Data:    append([]byte{}, data...),
		}

		logger.Logf(logger.Allow, "dol", "%s segment %d: %08x-%08x at offset %#x", kind, i, address, address+n, offset)

		return nil
	}

	return fmt.Errorf("dol: no free %s segment slot for %08x-%08x", kind, address, address+n)
}

// Append adds the used segments of another file to this file. Text segments
// are added as text segments and data segments as data segments. Existing
// segments are not moved. On error the segments added before the failure
// remain in the file.
func (f *File) Append(other *File) error {
	for _, k := range []Kind{Text, Data} {
		for _, s := range other.segments(k) {
			if !s.Used() {
				continue // for loop
			}
			if err := f.add(k, s.Address, s.Data); err != nil {
				return err
			}
		}
	}
	return nil
}

// Patch writes each instruction as a big-endian word at its address. Every
// address must be mapped by a text or data segment. On error the words
// written before the failing address remain in the file.
func (f *File) Patch(instructions []assembler.Instruction) error {
	for _, ins := range instructions {
		if !f.write(ins.Address, ins.Data) {
			return fmt.Errorf("%w: dol: address not mapped: %#08x", fault.Encoding, ins.Address)
		}
	}

	logger.Logf(logger.Allow, "dol", "%d words patched", len(instructions))

	return nil
}

func (f *File) write(address uint32, data uint32) bool {
	for _, k := range []Kind{Text, Data} {
		for _, s := range f.segments(k) {
			if s.contains(address, 4) {
				binary.BigEndian.PutUint32(s.Data[address-s.Address:], data)
				return true
			}
		}
	}
	return false
}

// Read returns the big-endian word at the address.
func (f *File) Read(address uint32) (uint32, bool) {
	for _, k := range []Kind{Text, Data} {
		for _, s := range f.segments(k) {
			if s.contains(address, 4) {
				return binary.BigEndian.Uint32(s.Data[address-s.Address:]), true
			}
		}
	}
	return 0, false
}
