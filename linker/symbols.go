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

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// definition of a global symbol.
type definition struct {
	// nil for absolute symbols
	section *inputSection
	value   uint32
	weak    bool
}

// address returns the final address of the definition. only valid once the
// section has been placed.
func (d *definition) address() (uint32, bool) {
	if d.section == nil {
		return d.value, true
	}
	if !d.section.placed {
		return 0, false
	}
	return d.section.address + d.value, true
}

type globals struct {
	defs map[string]*definition

	// names in the order they were first defined
	order []string
}

func (g *globals) lookup(name string) (*definition, bool) {
	d, ok := g.defs[name]
	return d, ok
}

// table returns the addresses of all definitions in placed sections.
func (g *globals) table() SymbolTable {
	t := make(SymbolTable, len(g.order))
	for _, name := range g.order {
		if a, ok := g.defs[name].address(); ok {
			t[name] = a
		}
	}
	return t
}

// resolveGlobals collects the definitions of global and weak symbols. the
// first strong definition of a symbol is used. a weak definition is used only
// if there is no strong definition.
func resolveGlobals(objects []*object) (*globals, error) {
	g := &globals{
		defs: make(map[string]*definition),
	}

	for _, obj := range objects {
		for _, sym := range obj.symbols {
			bind := elf.ST_BIND(sym.Info)
			if bind != elf.STB_GLOBAL && bind != elf.STB_WEAK {
				continue // for loop
			}

			var def *definition

			switch sym.Section {
			case elf.SHN_UNDEF:
				continue // for loop
			case elf.SHN_COMMON:
				return nil, fmt.Errorf("%w: %s: common symbol %s is not supported", fault.Parse, obj.member, sym.Name)
			case elf.SHN_ABS:
				def = &definition{value: uint32(sym.Value)}
			default:
				if int(sym.Section) >= len(obj.sections) || obj.sections[sym.Section] == nil {
					logger.Logf(logger.Allow, "linker", "%s: ignoring %s defined in unloaded section", obj.member, sym.Name)
					continue // for loop
				}
				def = &definition{
					section: obj.sections[sym.Section],
					value:   uint32(sym.Value),
				}
			}
			def.weak = bind == elf.STB_WEAK

			existing, ok := g.defs[sym.Name]
			if !ok {
				g.defs[sym.Name] = def
				g.order = append(g.order, sym.Name)
				continue // for loop
			}

			if existing.weak && !def.weak {
				g.defs[sym.Name] = def
				continue // for loop
			}

			if !existing.weak && !def.weak {
				logger.Logf(logger.Allow, "linker", "%s: duplicate definition of %s ignored", obj.member, sym.Name)
			}
		}
	}

	return g, nil
}

// target returns the section a relocation refers to. the section is nil for
// absolute symbols and for symbols defined outside the inputs.
func target(obj *object, index uint32, g *globals) (*inputSection, bool) {
	if index == 0 {
		return nil, false
	}
	sym := obj.symbols[index-1]

	if elf.ST_BIND(sym.Info) != elf.STB_LOCAL {
		if d, ok := g.lookup(sym.Name); ok {
			return d.section, d.section != nil
		}
		return nil, false
	}

	if int(sym.Section) < len(obj.sections) && obj.sections[sym.Section] != nil {
		return obj.sections[sym.Section], true
	}

	return nil, false
}

// symbolAddress returns the value of the symbol referred to by a relocation.
func symbolAddress(obj *object, index uint32, g *globals, known map[string]uint32) (uint32, error) {
	if index == 0 {
		return 0, nil
	}
	sym := obj.symbols[index-1]

	if elf.ST_BIND(sym.Info) != elf.STB_LOCAL {
		if d, ok := g.lookup(sym.Name); ok {
			if a, ok := d.address(); ok {
				return a, nil
			}
			return 0, fmt.Errorf("%w: %s is defined in a discarded section", fault.Resolution, sym.Name)
		}
		if a, ok := known[sym.Name]; ok {
			return a, nil
		}
		return 0, fmt.Errorf("%w: undefined symbol %s", fault.Resolution, sym.Name)
	}

	switch sym.Section {
	case elf.SHN_ABS:
		return uint32(sym.Value), nil
	case elf.SHN_UNDEF:
		return 0, fmt.Errorf("%w: undefined local symbol %s", fault.Resolution, sym.Name)
	}

	if int(sym.Section) >= len(obj.sections) || obj.sections[sym.Section] == nil {
		return 0, fmt.Errorf("%w: %s: relocation against unloaded section", fault.Parse, obj.member)
	}

	sec := obj.sections[sym.Section]
	if !sec.placed {
		return 0, fmt.Errorf("%w: %s: relocation against discarded section %s", fault.Resolution, obj.member, sec.name)
	}

	return sec.address + uint32(sym.Value), nil
}
