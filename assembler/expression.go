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

package assembler

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// evaluate an address expression. terms are added or subtracted from left to
// right with the result wrapping at 32 bits.
func (asm *Assembler) evaluate(expr string) (uint32, error) {
	var address uint32

	s := strings.TrimSpace(expr)
	if s == "" {
		return 0, fmt.Errorf("%w: empty address expression", fault.Encoding)
	}

	first := true
	for {
		add := true

		if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
			add = s[0] == '+'
			s = strings.TrimSpace(s[1:])
		} else if !first {
			return 0, fmt.Errorf("%w: expected + or - operator but found %q", fault.Encoding, s)
		}
		first = false

		if s == "" {
			return 0, fmt.Errorf("%w: expected integer literal or symbol at end of %q", fault.Encoding, expr)
		}

		var val uint32

		switch c := s[0]; {
		case c >= '0' && c <= '9':
			n := 0
			for n < len(s) && isLiteralChar(s[n]) {
				n++
			}
			v, err := parseLiteral(s[:n])
			if err != nil {
				return 0, err
			}
			val = uint32(v)
			s = s[n:]

		case c == '[':
			depth := 0
			n := -1
			for i := 0; i < len(s); i++ {
				if s[i] == '[' {
					depth++
				} else if s[i] == ']' {
					depth--
					if depth == 0 {
						n = i
						break // for loop
					}
				}
			}
			if n == -1 {
				return 0, fmt.Errorf("%w: unterminated bracket in %q", fault.Encoding, s)
			}
			v, err := asm.resolve(s[1:n])
			if err != nil {
				return 0, err
			}
			val = v
			s = s[n+1:]

		default:
			return 0, fmt.Errorf("%w: expected integer literal or symbol but found %q", fault.Encoding, s)
		}

		if add {
			address += val
		} else {
			address -= val
		}

		s = strings.TrimSpace(s)
		if s == "" {
			return address, nil
		}
	}
}

func isLiteralChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
