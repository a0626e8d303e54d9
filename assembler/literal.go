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
	"strconv"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// parseLiteral parses a decimal, hexadecimal (0x), octal (0o) or binary (0b)
// integer. Underscores may be used as digit separators. A leading zero does
// not indicate octal.
func parseLiteral(s string) (int64, error) {
	lit := s

	var negative bool
	if strings.HasPrefix(lit, "-") {
		negative = true
		lit = lit[1:]
	}

	base := 10
	if len(lit) > 2 && lit[0] == '0' {
		switch lit[1] {
		case 'x', 'X':
			base = 16
			lit = lit[2:]
		case 'o', 'O':
			base = 8
			lit = lit[2:]
		case 'b', 'B':
			base = 2
			lit = lit[2:]
		}
	}

	lit = strings.ReplaceAll(lit, "_", "")
	if lit == "" {
		return 0, fmt.Errorf("%w: invalid literal: %s", fault.Encoding, s)
	}

	v, err := strconv.ParseUint(lit, base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid literal: %s", fault.Encoding, s)
	}

	if negative {
		if v > 0x80000000 {
			return 0, fmt.Errorf("%w: literal out of range: %s", fault.Encoding, s)
		}
		return -int64(v), nil
	}

	return int64(v), nil
}
