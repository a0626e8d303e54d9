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

// Package compile runs the Rust toolchain to produce the static library that
// is linked into the game.
package compile

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// Target is the rust target triple for the GameCube's CPU.
const Target = "powerpc-unknown-linux-gnu"

// RustFlags enables the instructions the Gekko supports beyond the base
// target. Code is generated for a fixed load address so no GOT is needed.
const RustFlags = "-C target-feature=+msync,+fres,+frsqrte -C relocation-model=static"

// Cargo describes how cargo is invoked.
type Cargo struct {
	// directory of the project. the current directory if empty
	Dir string

	// build without --release
	Debug bool

	// the cargo executable. "cargo" if empty
	Program string

	// output of the cargo process. discarded if nil
	Stdout io.Writer
	Stderr io.Writer
}

func (c Cargo) command(args ...string) *exec.Cmd {
	prog := c.Program
	if prog == "" {
		prog = "cargo"
	}

	cmd := exec.Command(prog, args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd
}

// BuildCommand returns the command that compiles the project.
func (c Cargo) BuildCommand() *exec.Cmd {
	args := []string{"build", "--target", Target}
	if !c.Debug {
		args = append(args, "--release")
	}
	cmd := c.command(args...)
	cmd.Env = append(os.Environ(), "RUSTFLAGS="+RustFlags)
	return cmd
}

func run(cmd *exec.Cmd) error {
	logger.Logf(logger.Allow, "compile", "%v", cmd.Args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: compile: %v", fault.IO, err)
	}
	return nil
}

// Build compiles the project.
func (c Cargo) Build() error {
	if err := run(c.BuildCommand()); err != nil {
		return fmt.Errorf("couldn't build the project: %w", err)
	}
	return nil
}

// New creates a library project called name.
func (c Cargo) New(name string) error {
	if err := run(c.command("new", "--lib", name)); err != nil {
		return fmt.Errorf("couldn't create the cargo project: %w", err)
	}
	return nil
}

// Profile returns the name of the build profile.
func (c Cargo) Profile() string {
	if c.Debug {
		return "debug"
	}
	return "release"
}

// Library returns the path of the compiled static library.
func (c Cargo) Library() (string, error) {
	dir := filepath.Join(c.Dir, "target", Target, c.Profile())

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: compile: couldn't find the compiled static library: %v", fault.IO, err)
	}

	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".a" {
			return filepath.Join(dir, e.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: compile: couldn't find the compiled static library in %s", fault.IO, dir)
}
