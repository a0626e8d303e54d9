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

package symbolmap_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/linker"
	"github.com/jetsetilly/romhack/symbolmap"
	"github.com/jetsetilly/romhack/test"
)

const gameMap = `.text section layout
  Starting        Virtual
  address  Size   address
  -----------------------
  00000000 000384 80003100  1 .text 	os.a __start.c
  00000000 00004c 80003100  4 __start 	os.a __start.c
  00000000 000024 80005000  4 draw__6SpriteCFPCci 	sprite.o
  00000000 000010 80005024  4 main 	main.o

.data section layout
  00000000 000004 80400000  4 gFrameCount 	main.o
`

func TestParse(t *testing.T) {
	symbols, err := symbolmap.Parse([]byte(gameMap))
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, len(symbols), 4)
	test.ExpectEquality(t, symbols["__start"], uint32(0x80003100))
	test.ExpectEquality(t, symbols["Sprite::draw(const char*, int) const"], uint32(0x80005000))
	test.ExpectEquality(t, symbols["main"], uint32(0x80005024))
	test.ExpectEquality(t, symbols["gFrameCount"], uint32(0x80400000))

	_, ok := symbols[".text"]
	test.ExpectFailure(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := symbolmap.Parse([]byte("  00000000 000010 8000ZZZZ  4 bad 	x.o\n"))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	_, err = symbolmap.Parse([]byte{0xff, 0xfe, 0x00})
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	symbols, err := symbolmap.Parse([]byte("nothing to see here\n\n"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(symbols), 0)
}

var sections = []linker.Section{
	{Name: ".text.init", Kind: linker.Text, Address: 0x80401000, Length: 0x20, MemberName: "hack.o"},
	{Name: ".text.foo::h0123456789abcdef", Kind: linker.Text, Address: 0x80401020, Length: 0x10, MemberName: "hack.o"},
	{Name: ".rodata", Kind: linker.ReadOnlyData, Address: 0x80401030, Length: 0x18, SymOffset: 8, MemberName: "hack.o"},
	{Name: ".text", Kind: linker.Text, Address: 0x80401048, Length: 0x24, SymOffset: 4, MemberName: "memcpy.o"},
}

func TestWrite(t *testing.T) {
	var b bytes.Buffer
	test.DemandSuccess(t, symbolmap.WriteTo(&b, sections, nil))

	expected := ".text section layout\n" +
		"  00000000 000020 80401000  4 init \thack.o\n" +
		"  00000000 000010 80401020  4 foo \thack.o\n" +
		"  00000000 000010 80401038  4 .rodata \thack.o\n" +
		"  00000000 000020 8040104c  4 .text \tmemcpy.o\n"

	test.ExpectEquality(t, b.String(), expected)
}

func TestWriteWithOriginal(t *testing.T) {
	original := "  00000000 000024 80005000  4 draw__6SpriteCFPCci \tsprite.o\n" +
		"  00000000 000010 80005024  4 main \tmain.o\n" +
		"header line\n"

	var b bytes.Buffer
	test.DemandSuccess(t, symbolmap.WriteTo(&b, sections[:1], []byte(original)))

	expected := ".text section layout\n" +
		"  00000000 000020 80401000  4 init \thack.o\n" +
		"\n\n" +
		"  00000000 000024 80005000  4 Sprite::draw(const char*, int) const \tsprite.o\n" +
		"  00000000 000010 80005024  4 main \tmain.o\n" +
		"header line\n"

	test.ExpectEquality(t, b.String(), expected)
}

func TestRoundTrip(t *testing.T) {
	var b bytes.Buffer
	test.DemandSuccess(t, symbolmap.WriteTo(&b, sections, []byte(gameMap)))

	symbols, err := symbolmap.Parse(b.Bytes())
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, symbols["init"], uint32(0x80401000))
	test.ExpectEquality(t, symbols["foo"], uint32(0x80401020))
	test.ExpectEquality(t, symbols["Sprite::draw(const char*, int) const"], uint32(0x80005000))
	test.ExpectEquality(t, symbols["main"], uint32(0x80005024))
}

func TestWriteFile(t *testing.T) {
	// no path is not an error
	test.ExpectSuccess(t, symbolmap.Write("", sections, nil))

	path := filepath.Join(t.TempDir(), "framework.map")
	test.DemandSuccess(t, symbolmap.Write(path, sections, nil))

	data, err := os.ReadFile(path)
	test.DemandSuccess(t, err)

	symbols, err := symbolmap.Parse(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, symbols["init"], uint32(0x80401000))

	err = symbolmap.Write(filepath.Join(t.TempDir(), "missing", "framework.map"), sections, nil)
	test.ExpectSuccess(t, errors.Is(err, fault.IO))
}
