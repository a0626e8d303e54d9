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

package compile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/romhack/compile"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

func TestBuildCommand(t *testing.T) {
	cmd := compile.Cargo{Dir: "hack"}.BuildCommand()
	test.ExpectEquality(t, strings.Join(cmd.Args, " "), "cargo build --target powerpc-unknown-linux-gnu --release")
	test.ExpectEquality(t, cmd.Dir, "hack")
	test.ExpectEquality(t, cmd.Env[len(cmd.Env)-1], "RUSTFLAGS=-C target-feature=+msync,+fres,+frsqrte -C relocation-model=static")

	cmd = compile.Cargo{Debug: true}.BuildCommand()
	test.ExpectEquality(t, strings.Join(cmd.Args, " "), "cargo build --target powerpc-unknown-linux-gnu")
}

func TestLibrary(t *testing.T) {
	dir := t.TempDir()
	c := compile.Cargo{Dir: dir}

	_, err := c.Library()
	test.ExpectSuccess(t, errors.Is(err, fault.IO))

	release := filepath.Join(dir, "target", compile.Target, "release")
	test.DemandSuccess(t, os.MkdirAll(filepath.Join(release, "deps"), 0o755))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(release, "libhack.d"), nil, 0o644))

	_, err = c.Library()
	test.ExpectSuccess(t, errors.Is(err, fault.IO))

	test.DemandSuccess(t, os.WriteFile(filepath.Join(release, "libhack.a"), nil, 0o644))
	path, err := c.Library()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, path, filepath.Join(release, "libhack.a"))

	c.Debug = true
	_, err = c.Library()
	test.ExpectFailure(t, err)
}

func TestMissingProgram(t *testing.T) {
	c := compile.Cargo{Program: filepath.Join(t.TempDir(), "no-such-cargo")}
	err := c.Build()
	test.ExpectSuccess(t, errors.Is(err, fault.IO))
}
