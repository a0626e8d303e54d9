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

// Package symbolmap reads and writes symbol maps in the text format produced
// by the CodeWarrior linker.
//
// Parse() extracts the addresses of the game's symbols from the map shipped
// with the game (or made by decompilation projects). Write() documents the
// layout of the rom hack in the same format, followed by the original map
// with its names demangled, so that the result can be loaded by tools that
// understand the original.
package symbolmap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jetsetilly/romhack/demangle"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// a symbol row. the captured fields are the virtual address and the name
var row = regexp.MustCompile(`\s{2}\w{8}\s\w{6}\s(\w{8}).{4}(.*)\s{2}`)

// Parse returns the address of every symbol in the map. Section markers (names
// beginning with a period) are ignored, as are lines that are not symbol
// rows. Names are demangled where possible.
func Parse(data []byte) (map[string]uint32, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: symbolmap: the symbol map has invalid UTF-8", fault.Parse)
	}

	symbols := make(map[string]uint32)

	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")

		m := row.FindStringSubmatch(line)
		if m == nil {
			continue // for loop
		}

		name := m[2]
		if strings.HasPrefix(name, ".") {
			continue // for loop
		}

		address, err := strconv.ParseUint(m[1], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: symbolmap: line %d: couldn't parse the address %q", fault.Parse, n+1, m[1])
		}

		if d, err := demangle.Legacy(name); err == nil {
			name = d
		}

		symbols[name] = uint32(address)
	}

	logger.Logf(logger.Allow, "symbolmap", "%d symbols parsed", len(symbols))

	return symbols, nil
}
