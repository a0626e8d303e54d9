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

// Package fault defines the categories of error that can stop a build. Errors
// are created by wrapping one of the category values:
//
//	fmt.Errorf("%w: undefined symbol %s", fault.Resolution, name)
//
// and then wrapped again with the context of each stage they pass through. The
// category can be recovered at any point with errors.Is().
package fault

import "errors"

// Parse indicates malformed input: an archive, an object file, an executable
// container or the text of a symbol map.
var Parse = errors.New("parse error")

// Resolution indicates a symbol that could not be found. Either an undefined
// symbol referenced by a relocation, an entry symbol that the compiled code
// does not define, or a symbol named in the patch assembly.
var Resolution = errors.New("resolution error")

// Encoding indicates that something could not be expressed in the target
// format. An unknown mnemonic, a malformed address expression, a relocation
// that overflows its field or a patch to an unmapped address.
var Encoding = errors.New("encoding error")

// IO indicates a problem reading or writing a file.
var IO = errors.New("io error")
