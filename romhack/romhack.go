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

// Package romhack builds a modified disc image from a project file. The
// compiled code is linked against the game's symbols, patched into the
// game's executable, and the result is written as a new disc image or as a
// patch that can be applied to somebody else's copy of the game.
package romhack

import (
	"fmt"
	"os"
	"sort"

	"github.com/jetsetilly/romhack/archivefs"
	"github.com/jetsetilly/romhack/compile"
	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/progress"
)

// FileSource is the source of the files named in the project file. Files are
// either on disk or in a patch archive.
type FileSource interface {
	ReadFile(path string) ([]byte, error)
}

// Build compiles the project and emits either the disc image or a patch.
func Build(p progress.Printer, cfg *config.Config, cargo compile.Cargo, patch bool) error {
	if cfg.Src.Src != "" {
		cargo.Dir = cfg.Src.Src
	}

	p.Print(progress.Info, "Compiling", "")
	if err := cargo.Build(); err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	path, err := cargo.Library()
	if err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	compiled, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("romhack: %w: couldn't read the compiled static library: %v", fault.IO, err)
	}

	if patch {
		return BuildPatch(p, archivefs.Disk{}, compiled, cfg)
	}
	return BuildAndEmitISO(p, archivefs.Disk{}, compiled, cfg)
}

// the keys of the map in sorted order
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
