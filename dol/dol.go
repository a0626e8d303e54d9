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

// Package dol reads, modifies and writes DOL files, the executable format of
// the GameCube.
//
// A DOL file has a fixed size header describing up to seven text segments
// and eleven data segments, followed by the contents of those segments. The
// header also records the address and size of the zero initialised BSS area
// and the entry point.
//
// The original bytes of a parsed file are retained so that serialising an
// unmodified File reproduces the input exactly.
package dol

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// header layout
const (
	HeaderSize = 0x100

	TextSlots = 7
	DataSlots = 11

	offsetTable  = 0x00
	addressTable = 0x48
	sizeTable    = 0x90
	bssAddress   = 0xd8
	bssSize      = 0xdc
	entryPoint   = 0xe0
)

// segments are placed in the file at offsets with this alignment
const segmentAlignment = 32

// Kind distinguishes text segments from data segments.
type Kind int

// List of valid Kind values.
const (
	Text Kind = iota
	Data
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Data:
		return "data"
	}
	return "unknown"
}

// Segment is one slot in the DOL header. A slot is free if it has no data.
type Segment struct {
	Offset  uint32
	Address uint32
	Data    []byte
}

// Used returns true if the slot contains a segment.
func (s Segment) Used() bool {
	return len(s.Data) > 0
}

// End returns the first address after the segment.
func (s Segment) End() uint32 {
	return s.Address + uint32(len(s.Data))
}

func (s Segment) contains(address uint32, n uint32) bool {
	return s.Used() && address >= s.Address &&
		uint64(address-s.Address)+uint64(n) <= uint64(len(s.Data))
}

func (s Segment) overlaps(address uint32, n uint32) bool {
	return s.Used() && overlaps(s.Address, uint32(len(s.Data)), address, n)
}

// overlaps returns true if the two address ranges share at least one byte.
func overlaps(a uint32, an uint32, b uint32, bn uint32) bool {
	if an == 0 || bn == 0 {
		return false
	}
	return uint64(a) < uint64(b)+uint64(bn) && uint64(b) < uint64(a)+uint64(an)
}

// File is an in memory DOL file.
type File struct {
	Text [TextSlots]Segment
	Data [DataSlots]Segment

	BSSAddress uint32
	BSSSize    uint32
	Entry      uint32

	// the bytes the file was parsed from. nil for a new file
	raw []byte
}

// New returns an empty File.
func New() *File {
	return &File{}
}

// Parse a DOL file. The data is copied and may be reused by the caller.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: dol: file too short (%d bytes)", fault.Parse, len(data))
	}

	f := &File{
		raw: append([]byte{}, data...),
	}

	order := binary.BigEndian

	parseSlot := func(kind Kind, i int, slot int) (Segment, error) {
		seg := Segment{
			Offset:  order.Uint32(data[offsetTable+slot*4:]),
			Address: order.Uint32(data[addressTable+slot*4:]),
		}
		size := order.Uint32(data[sizeTable+slot*4:])
		if size == 0 {
			return seg, nil
		}
		if uint64(seg.Offset)+uint64(size) > uint64(len(data)) {
			return seg, fmt.Errorf("%w: dol: %s segment %d extends beyond end of file", fault.Parse, kind, i)
		}
		seg.Data = append([]byte{}, data[seg.Offset:seg.Offset+size]...)
		return seg, nil
	}

	var err error
	for i := range f.Text {
		f.Text[i], err = parseSlot(Text, i, i)
		if err != nil {
			return nil, err
		}
	}
	for i := range f.Data {
		f.Data[i], err = parseSlot(Data, i, TextSlots+i)
		if err != nil {
			return nil, err
		}
	}

	f.BSSAddress = order.Uint32(data[bssAddress:])
	f.BSSSize = order.Uint32(data[bssSize:])
	f.Entry = order.Uint32(data[entryPoint:])

	return f, nil
}

// Count returns the number of used segments.
func (f *File) Count() int {
	n := 0
	for _, s := range f.Text {
		if s.Used() {
			n++
		}
	}
	for _, s := range f.Data {
		if s.Used() {
			n++
		}
	}
	return n
}

// TotalSize returns the sum of the sizes of all used segments.
func (f *File) TotalSize() uint32 {
	var n uint32
	for _, s := range f.Text {
		n += uint32(len(s.Data))
	}
	for _, s := range f.Data {
		n += uint32(len(s.Data))
	}
	return n
}

// segments returns the slots for the kind.
func (f *File) segments(kind Kind) []Segment {
	if kind == Text {
		return f.Text[:]
	}
	return f.Data[:]
}

// fileEnd is the offset of the first byte after all data in the file.
func (f *File) fileEnd() uint32 {
	end := uint32(HeaderSize)
	if uint32(len(f.raw)) > end {
		end = uint32(len(f.raw))
	}
	for _, k := range []Kind{Text, Data} {
		for _, s := range f.segments(k) {
			if s.Used() && s.Offset+uint32(len(s.Data)) > end {
				end = s.Offset + uint32(len(s.Data))
			}
		}
	}
	return end
}

// String returns a summary of the segments in the file.
func (f *File) String() string {
	var s strings.Builder
	for _, k := range []Kind{Text, Data} {
		for i, seg := range f.segments(k) {
			if seg.Used() {
				s.WriteString(fmt.Sprintf("%s%d: %08x-%08x (offset %#x)\n", k, i, seg.Address, seg.End(), seg.Offset))
			}
		}
	}
	s.WriteString(fmt.Sprintf("bss: %08x-%08x\n", f.BSSAddress, f.BSSAddress+f.BSSSize))
	s.WriteString(fmt.Sprintf("entry: %08x\n", f.Entry))
	return s.String()
}

// Bytes serialises the file. Bytes that do not belong to the header or to a
// segment are taken from the original file.
func (f *File) Bytes() []byte {
	out := make([]byte, f.fileEnd())
	copy(out, f.raw)

	order := binary.BigEndian

	writeSlot := func(slot int, s Segment) {
		order.PutUint32(out[offsetTable+slot*4:], s.Offset)
		order.PutUint32(out[addressTable+slot*4:], s.Address)
		order.PutUint32(out[sizeTable+slot*4:], uint32(len(s.Data)))
		if s.Used() {
			copy(out[s.Offset:], s.Data)
		}
	}

	for i, s := range f.Text {
		writeSlot(i, s)
	}
	for i, s := range f.Data {
		writeSlot(TextSlots+i, s)
	}

	order.PutUint32(out[bssAddress:], f.BSSAddress)
	order.PutUint32(out[bssSize:], f.BSSSize)
	order.PutUint32(out[entryPoint:], f.Entry)

	return out
}

// Length returns the size of the DOL file described by the header. Used to
// find the end of a DOL embedded in a larger file.
func Length(header []byte) (uint32, error) {
	if len(header) < HeaderSize {
		return 0, fmt.Errorf("%w: dol: header too short (%d bytes)", fault.Parse, len(header))
	}

	order := binary.BigEndian

	end := uint64(HeaderSize)
	for slot := 0; slot < TextSlots+DataSlots; slot++ {
		size := order.Uint32(header[sizeTable+slot*4:])
		if size == 0 {
			continue // for loop
		}
		e := uint64(order.Uint32(header[offsetTable+slot*4:])) + uint64(size)
		if e > end {
			end = e
		}
	}

	if end > 0xffffffff {
		return 0, fmt.Errorf("%w: dol: segments extend beyond 4GB", fault.Parse)
	}

	return uint32(end), nil
}
