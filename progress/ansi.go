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

package progress

import (
	"fmt"
	"strings"
)

const (
	colRed    = 1
	colGreen  = 2
	colYellow = 3
)

const (
	targetPen       = 3
	targetBrightPen = 9
)

const attrBold = 1

// normalPen resets all attributes
const normalPen = "\033[0m"

// pens for each kind of message
var pens = map[Kind]string{
	Info:    colorBuild(colGreen, true, true),
	Warning: colorBuild(colYellow, true, true),
	Error:   colorBuild(colRed, true, true),
}

// colorBuild creates the ANSI sequence for the pen colour.
func colorBuild(col int, bright bool, bold bool) string {
	s := strings.Builder{}
	s.WriteString("\033[")

	target := targetPen
	if bright {
		target = targetBrightPen
	}
	s.WriteString(fmt.Sprintf("%d%d", target, col))

	if bold {
		s.WriteString(fmt.Sprintf(";%d", attrBold))
	}

	s.WriteString("m")
	return s.String()
}
