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

package dol_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/jetsetilly/romhack/assembler"
	"github.com/jetsetilly/romhack/dol"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

// sample returns a DOL with one text segment and one data segment.
func sample() []byte {
	data := make([]byte, 0x140)
	order := binary.BigEndian

	// text0
	order.PutUint32(data[0x00:], 0x100)
	order.PutUint32(data[0x48:], 0x80003100)
	order.PutUint32(data[0x90:], 0x20)

	// data0
	order.PutUint32(data[0x1c:], 0x120)
	order.PutUint32(data[0x64:], 0x80005000)
	order.PutUint32(data[0xac:], 0x20)

	order.PutUint32(data[0xd8:], 0x80006000)
	order.PutUint32(data[0xdc:], 0x100)
	order.PutUint32(data[0xe0:], 0x80003100)

	// the unused area of the header is preserved
	copy(data[0xf0:], []byte("padding"))

	for i := 0x100; i < 0x140; i++ {
		data[i] = byte(i)
	}

	return data
}

func TestRoundTrip(t *testing.T) {
	data := sample()
	f, err := dol.Parse(data)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, f.Count(), 2)
	test.ExpectEquality(t, f.TotalSize(), uint32(0x40))
	test.ExpectEquality(t, f.Text[0].Address, uint32(0x80003100))
	test.ExpectEquality(t, f.Data[0].Address, uint32(0x80005000))
	test.ExpectEquality(t, f.BSSAddress, uint32(0x80006000))
	test.ExpectEquality(t, f.BSSSize, uint32(0x100))
	test.ExpectEquality(t, f.Entry, uint32(0x80003100))

	test.ExpectSuccess(t, bytes.Equal(f.Bytes(), data))
}

func TestParseErrors(t *testing.T) {
	_, err := dol.Parse(make([]byte, 0xff))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	data := sample()
	binary.BigEndian.PutUint32(data[0x90:], 0x100)
	_, err = dol.Parse(data)
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))
}

func TestAppendAndPatch(t *testing.T) {
	f, err := dol.Parse(sample())
	test.DemandSuccess(t, err)

	other := dol.New()
	test.DemandSuccess(t, other.AddText(0x80401000, make([]byte, 0x10)))
	test.DemandSuccess(t, other.AddData(0x80402000, []byte{1, 2, 3, 4}))

	test.DemandSuccess(t, f.Append(other))
	test.ExpectEquality(t, f.Count(), 4)
	test.ExpectEquality(t, f.TotalSize(), uint32(0x54))

	// existing segments are not moved and the new segments follow the end
	// of the file
	test.ExpectEquality(t, f.Text[0].Offset, uint32(0x100))
	test.ExpectEquality(t, f.Text[1].Offset, uint32(0x140))
	test.ExpectEquality(t, f.Text[1].Address, uint32(0x80401000))
	test.ExpectEquality(t, f.Data[1].Offset, uint32(0x160))
	test.ExpectEquality(t, f.Data[1].Address, uint32(0x80402000))

	err = f.Patch([]assembler.Instruction{
		{Address: 0x80401004, Data: 0x60000000},
		{Address: 0x80003100, Data: 0x48001001},
	})
	test.DemandSuccess(t, err)

	v, ok := f.Read(0x80401004)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, uint32(0x60000000))

	// the serialised file can be parsed again
	g, err := dol.Parse(f.Bytes())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, g.Count(), 4)
	v, ok = g.Read(0x80003100)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, uint32(0x48001001))
	v, ok = g.Read(0x80402000)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, uint32(0x01020304))
	test.ExpectEquality(t, string(g.Bytes()[0xf0:0xf7]), "padding")
}

func TestPatchUnmapped(t *testing.T) {
	f, err := dol.Parse(sample())
	test.DemandSuccess(t, err)

	err = f.Patch([]assembler.Instruction{{Address: 0x80000000, Data: 0}})
	test.ExpectSuccess(t, errors.Is(err, fault.Encoding))

	// a word straddling the end of a segment is not mapped
	err = f.Patch([]assembler.Instruction{{Address: 0x8000311e, Data: 0}})
	test.ExpectSuccess(t, errors.Is(err, fault.Encoding))

	// bss is not part of the file
	err = f.Patch([]assembler.Instruction{{Address: 0x80006000, Data: 0}})
	test.ExpectSuccess(t, errors.Is(err, fault.Encoding))

	// words before the unmapped address stay written
	err = f.Patch([]assembler.Instruction{
		{Address: 0x80003100, Data: 0x60000000},
		{Address: 0x80000000, Data: 0},
	})
	test.ExpectSuccess(t, errors.Is(err, fault.Encoding))
	v, ok := f.Read(0x80003100)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, v, uint32(0x60000000))
}

func TestOverlap(t *testing.T) {
	f, err := dol.Parse(sample())
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, f.AddText(0x80003110, make([]byte, 0x10)))
	test.ExpectFailure(t, f.AddData(0x80004ff0, make([]byte, 0x20)))

	// adjacent is fine
	test.ExpectSuccess(t, f.AddText(0x80003120, make([]byte, 0x10)))

	// overlapping bss is allowed
	test.ExpectSuccess(t, f.AddData(0x80006000, make([]byte, 0x10)))
}

func TestNoFreeSlot(t *testing.T) {
	f := dol.New()
	for i := 0; i < dol.TextSlots; i++ {
		test.DemandSuccess(t, f.AddText(0x80000000+uint32(i)*0x100, make([]byte, 4)))
	}
	test.ExpectFailure(t, f.AddText(0x80010000, make([]byte, 4)))
	test.ExpectSuccess(t, f.AddData(0x80010000, make([]byte, 4)))
}

func TestLength(t *testing.T) {
	n, err := dol.Length(sample())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, uint32(0x140))

	_, err = dol.Length(make([]byte, 0x20))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))
}
