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

// Package ar reads and writes Unix ar archives, the container format for
// static libraries.
//
// Both the GNU and BSD conventions for long member names are understood when
// reading. Archives are always written in the GNU style.
package ar

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// Magic is the signature at the start of every archive.
const Magic = "!<arch>\n"

const headerSize = 60

// Member is a single file stored in an archive.
type Member struct {
	Name string
	Data []byte
}

// IsArchive returns true if data begins with the archive signature.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, []byte(Magic))
}

// Parse returns the members of the archive in the order they are stored. The
// symbol index and the long name table are not returned as members.
//
// The Data field of each member refers to the supplied data.
func Parse(data []byte) ([]Member, error) {
	if !IsArchive(data) {
		return nil, fmt.Errorf("%w: ar: missing archive signature", fault.Parse)
	}

	var members []Member
	var longNames []byte

	pos := len(Magic)

	// members are aligned to two bytes. a trailing padding byte on its own is
	// not a header
	for len(data)-pos > 1 {
		if pos%2 == 1 {
			pos++
		}

		if len(data)-pos < headerSize {
			return nil, fmt.Errorf("%w: ar: truncated member header at %#x", fault.Parse, pos)
		}
		hdr := data[pos : pos+headerSize]
		if hdr[58] != '`' || hdr[59] != '\n' {
			return nil, fmt.Errorf("%w: ar: bad member header at %#x", fault.Parse, pos)
		}

		size, err := strconv.ParseUint(strings.TrimSpace(string(hdr[48:58])), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: ar: bad member size at %#x", fault.Parse, pos)
		}

		start := pos + headerSize
		end := start + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: ar: member at %#x extends beyond end of archive", fault.Parse, pos)
		}
		contents := data[start:end]
		pos = end

		name := strings.TrimRight(string(hdr[:16]), " ")

		switch {
		case name == "/" || name == "/SYM64/" || name == "__.SYMDEF" || name == "__.SYMDEF SORTED":
			// symbol index
			continue

		case name == "//":
			longNames = contents
			continue

		case strings.HasPrefix(name, "#1/"):
			// BSD style. the name is at the start of the member data
			n, err := strconv.Atoi(name[3:])
			if err != nil || n > len(contents) {
				return nil, fmt.Errorf("%w: ar: bad BSD name %q", fault.Parse, name)
			}
			name = strings.TrimRight(string(contents[:n]), "\x00")
			contents = contents[n:]

		case len(name) > 1 && name[0] == '/':
			// GNU style. offset into the long name table
			offset, err := strconv.Atoi(name[1:])
			if err != nil || offset >= len(longNames) {
				return nil, fmt.Errorf("%w: ar: bad long name reference %q", fault.Parse, name)
			}
			n := longNames[offset:]
			if i := bytes.Index(n, []byte("/\n")); i >= 0 {
				n = n[:i]
			}
			name = string(n)

		default:
			name = strings.TrimSuffix(name, "/")
		}

		members = append(members, Member{
			Name: name,
			Data: contents,
		})
	}

	return members, nil
}
