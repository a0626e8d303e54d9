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

// Package demangle turns mangled symbol names back into something readable.
//
// Two schemes are supported. Legacy() handles the CodeWarrior scheme used by
// the shipped game's symbol map. Toolchain() handles the schemes emitted by
// the compiler used for rom hacks (Itanium C++ and Rust), and is implemented
// with the github.com/ianlancetaylor/demangle package.
package demangle

import (
	"github.com/ianlancetaylor/demangle"
)

// Toolchain demangles a symbol produced by the rom hack's compiler. If the
// name cannot be demangled it is returned unchanged.
func Toolchain(name string) string {
	return demangle.Filter(name)
}
