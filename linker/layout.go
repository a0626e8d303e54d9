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
	"fmt"

	"github.com/jetsetilly/romhack/logger"
)

// markReachable marks every section that can be reached from an entry symbol
// by following relocations. initialisation and finalisation arrays are always
// kept.
func markReachable(objects []*object, g *globals, entries []string) {
	var queue []*inputSection

	mark := func(sec *inputSection) {
		if sec != nil && !sec.live {
			sec.live = true
			queue = append(queue, sec)
		}
	}

	for _, e := range entries {
		d, _ := g.lookup(e)
		mark(d.section)
	}

	for _, obj := range objects {
		for i, sec := range obj.sections {
			if sec == nil {
				continue // for loop
			}
			switch obj.file.Sections[i].Type {
			case elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY, elf.SHT_PREINIT_ARRAY:
				mark(sec)
			}
		}
	}

	for len(queue) > 0 {
		sec := queue[0]
		queue = queue[1:]
		for _, r := range sec.relocs {
			if t, ok := target(sec.obj, r.symbol, g); ok {
				mark(t)
			}
		}
	}

	for _, obj := range objects {
		for _, sec := range obj.allocated() {
			if !sec.live {
				logger.Logf(logger.Allow, "linker", "%s: discarding %s", obj.member, sec.name)
			}
		}
	}
}

// layout assigns addresses to live sections in input order. returns the
// placed sections and the first address after the last section.
func layout(objects []*object, base uint32) ([]*inputSection, uint32, error) {
	var placed []*inputSection

	address := uint64(base)
	for _, obj := range objects {
		for _, sec := range obj.allocated() {
			if !sec.live {
				continue // for loop
			}

			align := uint64(sec.align)
			address = (address + align - 1) / align * align
			if address+uint64(sec.size) > 1<<32 {
				return nil, 0, fmt.Errorf("%s: %s does not fit in the address space", obj.member, sec.name)
			}

			sec.address = uint32(address)
			sec.placed = true
			address += uint64(sec.size)

			placed = append(placed, sec)
		}
	}

	// the end address can be exactly 1<<32 only if the final section ends at
	// the top of memory. the image size would not be representable
	if address > 0xffffffff {
		return nil, 0, fmt.Errorf("image at %08x does not fit in the address space", base)
	}

	return placed, uint32(address), nil
}
