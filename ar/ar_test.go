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

package ar_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jetsetilly/romhack/ar"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

func TestWriteAndParse(t *testing.T) {
	var w ar.Writer
	w.Add("a.o", []byte("odd"))
	w.Add("a_rather_long_member_name.o", []byte("even"))
	w.Add("b.o", []byte{})

	data := w.Bytes()
	test.ExpectSuccess(t, ar.IsArchive(data))

	members, err := ar.Parse(data)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(members), 3)

	test.ExpectEquality(t, members[0].Name, "a.o")
	test.ExpectEquality(t, string(members[0].Data), "odd")
	test.ExpectEquality(t, members[1].Name, "a_rather_long_member_name.o")
	test.ExpectEquality(t, string(members[1].Data), "even")
	test.ExpectEquality(t, members[2].Name, "b.o")
	test.ExpectEquality(t, len(members[2].Data), 0)
}

func TestHeaderLayout(t *testing.T) {
	var w ar.Writer
	w.Add("x.o", []byte("abc"))
	data := w.Bytes()

	// signature, one 60 byte header, three bytes of data and one byte padding
	test.ExpectEquality(t, len(data), 8+60+4)
	test.ExpectEquality(t, string(data[8:24]), "x.o/            ")
	test.ExpectEquality(t, string(data[66:68]), "`\n")
}

func TestBSDNames(t *testing.T) {
	var b bytes.Buffer
	b.WriteString(ar.Magic)
	b.WriteString("#1/12           0           0     0     644     16        `\n")
	b.WriteString("long_name.o\x00")
	b.WriteString("data")

	members, err := ar.Parse(b.Bytes())
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(members), 1)
	test.ExpectEquality(t, members[0].Name, "long_name.o")
	test.ExpectEquality(t, string(members[0].Data), "data")
}

func TestSymbolIndexSkipped(t *testing.T) {
	var b bytes.Buffer
	b.WriteString(ar.Magic)
	b.WriteString("/               0           0     0     0       4         `\n")
	b.WriteString("\x00\x00\x00\x00")
	b.WriteString("y.o/            0           0     0     644     2         `\n")
	b.WriteString("ok")

	members, err := ar.Parse(b.Bytes())
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(members), 1)
	test.ExpectEquality(t, members[0].Name, "y.o")
}

func TestMalformed(t *testing.T) {
	_, err := ar.Parse([]byte("not an archive"))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	var w ar.Writer
	w.Add("x.o", []byte("abcdef"))
	data := w.Bytes()

	_, err = ar.Parse(data[:len(data)-3])
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	data[66] = 'X'
	_, err = ar.Parse(data)
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))
}
