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

package symbolmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/jetsetilly/romhack/demangle"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/linker"
)

const header = ".text section layout"

// prefix of sections created by the compiler's per-function sections option
const textPrefix = ".text."

// length of the hash suffix of a demangled Rust symbol. "::h" followed by
// sixteen hex digits
const hashSuffix = 19

// the name field of an original map row
var originalName = regexp.MustCompile(`(\s{2}\d\s)(.*)(\s{2}.*)`)

// Write the symbol map to a file. If the path is empty nothing is written.
// The original argument can be nil.
func Write(path string, sections []linker.Section, original []byte) error {
	if path == "" {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: symbolmap: %v", fault.IO, err)
	}

	err = WriteTo(f, sections, original)
	if err != nil {
		_ = f.Close()
		return err
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("%w: symbolmap: %v", fault.IO, err)
	}

	return nil
}

// WriteTo writes the symbol map to an io.Writer.
func WriteTo(w io.Writer, sections []linker.Section, original []byte) error {
	b := bufio.NewWriter(w)

	fmt.Fprintln(b, header)

	for _, s := range sections {
		fmt.Fprintf(b, "  00000000 %06x %08x  4 %s \t%s\n",
			s.Length-s.SymOffset, s.Address+s.SymOffset, displayName(s), s.MemberName)
	}

	if original != nil {
		fmt.Fprint(b, "\n\n")

		text := strings.TrimSuffix(string(original), "\n")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintln(b, demangleLine(strings.TrimSuffix(line, "\r")))
		}
	}

	if err := b.Flush(); err != nil {
		return fmt.Errorf("%w: symbolmap: %v", fault.IO, err)
	}

	return nil
}

// displayName returns the name of the section as it should appear in the
// symbol map.
func displayName(s linker.Section) string {
	if s.Kind != linker.Text || !strings.HasPrefix(s.Name, textPrefix) {
		return s.Name
	}

	name := demangle.Toolchain(strings.TrimPrefix(s.Name, textPrefix))
	if len(name) >= hashSuffix && name[len(name)-hashSuffix:][:3] == "::h" {
		name = name[:len(name)-hashSuffix]
	}

	return name
}

// demangleLine demangles the name field of a row from an original map. lines
// without a name field are unchanged, as are names that can't be demangled.
func demangleLine(line string) string {
	m := originalName.FindStringSubmatchIndex(line)
	if m == nil {
		return line
	}

	name := line[m[4]:m[5]]
	d, err := demangle.Legacy(name)
	if err != nil {
		return line
	}

	return line[:m[4]] + d + line[m[5]:]
}
