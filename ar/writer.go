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

package ar

import (
	"bytes"
	"fmt"
)

// Writer builds an archive in memory.
type Writer struct {
	members []Member
}

// Add a member to the archive. Members are written in the order they are
// added.
func (w *Writer) Add(name string, data []byte) {
	w.members = append(w.members, Member{Name: name, Data: data})
}

// Bytes returns the encoded archive. Names longer than fifteen characters are
// stored in a long name table.
func (w *Writer) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(Magic)

	var longNames bytes.Buffer
	offsets := make([]int, len(w.members))
	for i, m := range w.members {
		if len(m.Name) > 15 {
			offsets[i] = longNames.Len()
			longNames.WriteString(m.Name)
			longNames.WriteString("/\n")
		} else {
			offsets[i] = -1
		}
	}

	if longNames.Len() > 0 {
		writeMember(&b, "//", longNames.Bytes())
	}

	for i, m := range w.members {
		name := m.Name + "/"
		if offsets[i] >= 0 {
			name = fmt.Sprintf("/%d", offsets[i])
		}
		writeMember(&b, name, m.Data)
	}

	return b.Bytes()
}

func writeMember(b *bytes.Buffer, name string, data []byte) {
	fmt.Fprintf(b, "%-16s%-12d%-6d%-6d%-8o%-10d`\n", name, 0, 0, 0, 0o644, len(data))
	b.Write(data)
	if len(data)%2 == 1 {
		b.WriteByte('\n')
	}
}
