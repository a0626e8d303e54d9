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

// Package linker is a static linker for PowerPC relocatable objects. It links
// freshly compiled code against the symbols already present in the game's
// executable, producing a single loadable region at a fixed base address.
//
// Inputs are ar archives (static libraries) or bare ELF objects. Earlier
// inputs take precedence over later inputs when the same symbol is defined
// more than once, so the rom hack's own code should be first and the builtin
// runtime library (see the basiclib package) last.
//
// Linking is deterministic. Sections are laid out in input order, then in
// member order within an archive and then in section order within a member.
package linker

import (
	"fmt"

	"github.com/jetsetilly/romhack/dol"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// Kind is the broad classification of a linked section.
type Kind int

// List of valid Kind values.
const (
	Text Kind = iota
	Data
	ReadOnlyData
	BSS
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Data:
		return "data"
	case ReadOnlyData:
		return "rodata"
	case BSS:
		return "bss"
	}
	return "unknown"
}

// Section is a section of input that has been given a final address.
type Section struct {
	Name    string
	Kind    Kind
	Address uint32
	Length  uint32

	// offset into the section of the first function or object symbol
	SymOffset uint32

	// name of the archive member the section came from
	MemberName string
}

func (s Section) String() string {
	return fmt.Sprintf("%08x %06x %s %s (%s)", s.Address, s.Length, s.Kind, s.Name, s.MemberName)
}

// SymbolTable maps symbol names to absolute addresses.
type SymbolTable map[string]uint32

// Result of a successful link.
type Result struct {
	// every global symbol defined by the inputs and included in the output
	Symbols SymbolTable

	// sections in address order
	Sections []Section

	// a DOL containing the linked image as a single text segment. the entry
	// point is the address of the first entry symbol
	Container *dol.File
}

type options struct {
	discardUnreachable bool
}

// Option changes the default behaviour of Link().
type Option func(*options)

// DiscardUnreachable causes sections that cannot be reached from an entry
// symbol to be left out of the image.
func DiscardUnreachable(discard bool) Option {
	return func(o *options) {
		o.discardUnreachable = discard
	}
}

// Link the archives into an image starting at the base address. Symbols not
// defined by any archive are looked up in the known symbols. Every entry
// symbol must be defined by the archives.
func Link(archives [][]byte, base uint32, entries []string, known map[string]uint32, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	objects, err := load(archives)
	if err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}

	globals, err := resolveGlobals(objects)
	if err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}

	for _, e := range entries {
		if _, ok := globals.lookup(e); !ok {
			return nil, fmt.Errorf("linker: %w: entry symbol not found: %s", fault.Resolution, e)
		}
	}

	if o.discardUnreachable {
		markReachable(objects, globals, entries)
	} else {
		for _, obj := range objects {
			for _, sec := range obj.allocated() {
				sec.live = true
			}
		}
	}

	placed, end, err := layout(objects, base)
	if err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}

	for _, sec := range placed {
		if err := relocate(sec, globals, known); err != nil {
			return nil, fmt.Errorf("linker: %w", err)
		}
	}

	res := &Result{
		Symbols:   globals.table(),
		Container: dol.New(),
	}

	image := make([]byte, end-base)
	for _, sec := range placed {
		if sec.data != nil {
			copy(image[sec.address-base:], sec.data)
		}
		res.Sections = append(res.Sections, Section{
			Name:       sec.name,
			Kind:       sec.kind,
			Address:    sec.address,
			Length:     sec.size,
			SymOffset:  sec.symOffset(),
			MemberName: sec.obj.member,
		})
	}

	if err := res.Container.AddText(base, image); err != nil {
		return nil, fmt.Errorf("linker: %w", err)
	}

	if len(entries) > 0 {
		res.Container.Entry = res.Symbols[entries[0]]
	}

	logger.Logf(logger.Allow, "linker", "%d sections linked at %08x-%08x", len(placed), base, end)
	logger.Logf(logger.Allow, "linker", "%d symbols defined", len(res.Symbols))

	return res, nil
}
