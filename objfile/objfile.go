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

// Package objfile writes minimal ELF32 big-endian PowerPC relocatable object
// files. It is used to package hand-assembled runtime code and to build
// objects for testing the linker.
//
// The output is readable with the debug/elf package.
package objfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Special section names for symbols that do not belong to a section.
const (
	Undefined = ""
	Absolute  = "*ABS*"
	Common    = "*COM*"
)

// Section is a section to be included in the object file.
type Section struct {
	Name  string
	Type  elf.SectionType
	Flags elf.SectionFlag
	Align uint32

	// Data is ignored for SHT_NOBITS sections. Size is used instead
	Data []byte
	Size uint32

	Relocs []Reloc
}

// Reloc is a relocation entry against a section.
type Reloc struct {
	Offset uint32
	Symbol string
	Type   elf.R_PPC
	Addend int32
}

// Symbol is an entry in the object's symbol table. A Section value of
// Undefined, Absolute or Common places the symbol in the corresponding special
// section.
type Symbol struct {
	Name    string
	Section string
	Value   uint32
	Size    uint32
	Type    elf.SymType
	Bind    elf.SymBind
}

// Object is an object file under construction.
type Object struct {
	Machine elf.Machine
	Type    elf.Type

	// RelocType is the section type used for relocation sections. One of
	// SHT_RELA or SHT_REL
	RelocType elf.SectionType

	sections []Section
	symbols  []Symbol
}

// New returns an empty PowerPC relocatable object.
func New() *Object {
	return &Object{
		Machine:   elf.EM_PPC,
		Type:      elf.ET_REL,
		RelocType: elf.SHT_RELA,
	}
}

// AddSection adds a section. Sections are written in the order they are
// added.
func (o *Object) AddSection(s Section) {
	o.sections = append(o.sections, s)
}

// AddSymbol adds a symbol to the symbol table. Symbols referred to by
// relocations but never added are written as global undefined symbols.
func (o *Object) AddSymbol(s Symbol) {
	o.symbols = append(o.symbols, s)
}

// AddFunction is a convenience function that adds a text section called
// ".text.<name>" and a global function symbol at the start of it.
func (o *Object) AddFunction(name string, code []byte, relocs ...Reloc) {
	section := ".text." + name
	o.AddSection(Section{
		Name:   section,
		Type:   elf.SHT_PROGBITS,
		Flags:  elf.SHF_ALLOC | elf.SHF_EXECINSTR,
		Align:  4,
		Data:   code,
		Relocs: relocs,
	})
	o.AddSymbol(Symbol{
		Name:    name,
		Section: section,
		Size:    uint32(len(code)),
		Type:    elf.STT_FUNC,
		Bind:    elf.STB_GLOBAL,
	})
}

// strtab accumulates a string table. the first byte is always zero
type strtab struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newStrtab() *strtab {
	s := &strtab{offsets: make(map[string]uint32)}
	s.buf.WriteByte(0)
	s.offsets[""] = 0
	return s
}

func (s *strtab) add(name string) uint32 {
	if o, ok := s.offsets[name]; ok {
		return o
	}
	o := uint32(s.buf.Len())
	s.buf.WriteString(name)
	s.buf.WriteByte(0)
	s.offsets[name] = o
	return o
}

type sectionHeader struct {
	name      uint32
	typ       elf.SectionType
	flags     elf.SectionFlag
	offset    uint32
	size      uint32
	link      uint32
	info      uint32
	addralign uint32
	entsize   uint32
	data      []byte
}

// Bytes encodes the object file.
func (o *Object) Bytes() []byte {
	order := binary.BigEndian

	// section indexes. index zero is the null section
	sectionIndex := make(map[string]uint16)
	for i, s := range o.sections {
		sectionIndex[s.Name] = uint16(i + 1)
	}

	// symbols referenced by relocations but not declared
	symbols := append([]Symbol{}, o.symbols...)
	declared := make(map[string]bool)
	for _, s := range symbols {
		declared[s.Name] = true
	}
	for _, s := range o.sections {
		for _, r := range s.Relocs {
			if !declared[r.Symbol] {
				declared[r.Symbol] = true
				symbols = append(symbols, Symbol{
					Name: r.Symbol,
					Type: elf.STT_NOTYPE,
					Bind: elf.STB_GLOBAL,
				})
			}
		}
	}

	// locals must precede everything else in the symbol table
	var ordered []Symbol
	for _, s := range symbols {
		if s.Bind == elf.STB_LOCAL {
			ordered = append(ordered, s)
		}
	}
	firstGlobal := uint32(len(ordered) + 1)
	for _, s := range symbols {
		if s.Bind != elf.STB_LOCAL {
			ordered = append(ordered, s)
		}
	}

	strs := newStrtab()
	symbolIndex := make(map[string]uint32)
	var symtab bytes.Buffer
	symtab.Write(make([]byte, 16))
	for i, s := range ordered {
		symbolIndex[s.Name] = uint32(i + 1)

		var shndx uint16
		switch s.Section {
		case Undefined:
			shndx = uint16(elf.SHN_UNDEF)
		case Absolute:
			shndx = uint16(elf.SHN_ABS)
		case Common:
			shndx = uint16(elf.SHN_COMMON)
		default:
			shndx = sectionIndex[s.Section]
		}

		var ent [16]byte
		order.PutUint32(ent[0:], strs.add(s.Name))
		order.PutUint32(ent[4:], s.Value)
		order.PutUint32(ent[8:], s.Size)
		ent[12] = byte(s.Bind)<<4 | byte(s.Type)&0x0f
		order.PutUint16(ent[14:], shndx)
		symtab.Write(ent[:])
	}

	shstrs := newStrtab()
	headers := []sectionHeader{{}}

	for _, s := range o.sections {
		h := sectionHeader{
			name:      shstrs.add(s.Name),
			typ:       s.Type,
			flags:     s.Flags,
			addralign: s.Align,
			data:      s.Data,
			size:      uint32(len(s.Data)),
		}
		if s.Type == elf.SHT_NOBITS {
			h.data = nil
			h.size = s.Size
		}
		headers = append(headers, h)
	}

	symtabIndex := uint32(len(o.sections)) + 1

	// relocation sections follow the sections they apply to
	var relocHeaders []sectionHeader
	for i, s := range o.sections {
		if len(s.Relocs) == 0 {
			continue
		}

		prefix := ".rela"
		entsize := uint32(12)
		if o.RelocType == elf.SHT_REL {
			prefix = ".rel"
			entsize = 8
		}

		var rel bytes.Buffer
		for _, r := range s.Relocs {
			var ent [12]byte
			order.PutUint32(ent[0:], r.Offset)
			order.PutUint32(ent[4:], symbolIndex[r.Symbol]<<8|uint32(r.Type)&0xff)
			order.PutUint32(ent[8:], uint32(r.Addend))
			rel.Write(ent[:entsize])
		}

		relocHeaders = append(relocHeaders, sectionHeader{
			name:      shstrs.add(prefix + s.Name),
			typ:       o.RelocType,
			flags:     elf.SHF_INFO_LINK,
			info:      uint32(i + 1),
			addralign: 4,
			entsize:   entsize,
			data:      rel.Bytes(),
			size:      uint32(rel.Len()),
		})
	}

	symtabIndex += uint32(len(relocHeaders))
	for i := range relocHeaders {
		relocHeaders[i].link = symtabIndex
	}
	headers = append(headers, relocHeaders...)

	headers = append(headers, sectionHeader{
		name:      shstrs.add(".symtab"),
		typ:       elf.SHT_SYMTAB,
		link:      symtabIndex + 1,
		info:      firstGlobal,
		addralign: 4,
		entsize:   16,
		data:      symtab.Bytes(),
		size:      uint32(symtab.Len()),
	})

	headers = append(headers, sectionHeader{
		name:      shstrs.add(".strtab"),
		typ:       elf.SHT_STRTAB,
		addralign: 1,
		data:      strs.buf.Bytes(),
		size:      uint32(strs.buf.Len()),
	})

	shstrtabName := shstrs.add(".shstrtab")
	headers = append(headers, sectionHeader{
		name:      shstrtabName,
		typ:       elf.SHT_STRTAB,
		addralign: 1,
		data:      shstrs.buf.Bytes(),
		size:      uint32(shstrs.buf.Len()),
	})

	// lay out section contents after the file header
	const ehsize = 52
	out := make([]byte, ehsize)
	for i := range headers {
		h := &headers[i]
		if h.data == nil {
			continue
		}
		align := h.addralign
		if align == 0 {
			align = 1
		}
		for uint32(len(out))%align != 0 {
			out = append(out, 0)
		}
		h.offset = uint32(len(out))
		out = append(out, h.data...)
	}
	for len(out)%4 != 0 {
		out = append(out, 0)
	}

	shoff := uint32(len(out))
	for _, h := range headers {
		var ent [40]byte
		order.PutUint32(ent[0:], h.name)
		order.PutUint32(ent[4:], uint32(h.typ))
		order.PutUint32(ent[8:], uint32(h.flags))
		order.PutUint32(ent[16:], h.offset)
		order.PutUint32(ent[20:], h.size)
		order.PutUint32(ent[24:], h.link)
		order.PutUint32(ent[28:], h.info)
		order.PutUint32(ent[32:], h.addralign)
		order.PutUint32(ent[36:], h.entsize)
		out = append(out, ent[:]...)
	}

	copy(out[0:], elf.ELFMAG)
	out[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	out[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	out[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	order.PutUint16(out[16:], uint16(o.Type))
	order.PutUint16(out[18:], uint16(o.Machine))
	order.PutUint32(out[20:], uint32(elf.EV_CURRENT))
	order.PutUint32(out[32:], shoff)
	order.PutUint16(out[40:], ehsize)
	order.PutUint16(out[46:], 40)
	order.PutUint16(out[48:], uint16(len(headers)))
	order.PutUint16(out[50:], uint16(len(headers)-1))

	return out
}
