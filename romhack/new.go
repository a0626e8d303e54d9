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

package romhack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jetsetilly/romhack/compile"
	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/progress"
)

const libRS = `#![no_std]
pub mod panic_impl;

#[no_mangle]
pub extern "C" fn init() {}
`

const panicImplRS = `#[cfg(any(target_arch = "powerpc", target_arch = "wasm32"))]
#[panic_handler]
fn panic(_info: &core::panic::PanicInfo) -> ! {
    loop {}
}
`

const patchASM = `; You can use this to patch the game's code to call into the Rom Hack's code
`

const cargoAdditions = `
[lib]
crate-type = ["staticlib"]

[profile.dev]
panic = "abort"
opt-level = 1

[profile.release]
panic = "abort"
lto = true
`

// NewProject creates a new rom hack project called name.
func NewProject(p progress.Printer, cargo compile.Cargo, name string) error {
	p.Print(progress.Info, "Creating", name)

	if err := cargo.New(name); err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	return Scaffold(filepath.Join(cargo.Dir, name), name)
}

// Scaffold adds the rom hack files to the cargo project in dir.
func Scaffold(dir string, name string) error {
	write := func(path string, content string) error {
		path = filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("romhack: %w: couldn't create %s: %v", fault.IO, path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("romhack: %w: couldn't create %s: %v", fault.IO, path, err)
		}
		return nil
	}

	if err := write(config.Filename, config.Template(name)); err != nil {
		return err
	}
	if err := write("src/lib.rs", libRS); err != nil {
		return err
	}
	if err := write("src/panic_impl.rs", panicImplRS); err != nil {
		return err
	}
	if err := write("src/patch.asm", patchASM); err != nil {
		return err
	}

	path := filepath.Join(dir, "Cargo.toml")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("romhack: %w: couldn't open the Cargo.toml: %v", fault.IO, err)
	}
	if _, err := f.WriteString(cargoAdditions); err != nil {
		_ = f.Close()
		return fmt.Errorf("romhack: %w: couldn't write into the Cargo.toml: %v", fault.IO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("romhack: %w: %v", fault.IO, err)
	}

	return nil
}
