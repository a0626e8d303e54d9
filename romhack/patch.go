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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/romhack/archivefs"
	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/progress"
)

// names of the fixed entries in a patch archive
const (
	patchCompiled    = "libcompiled.a"
	patchAsm         = "patch.asm"
	patchBannerImage = "banner.dat"
)

// PatchName returns the path of the patch file that replaces the disc image
// at path.
func PatchName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".patch"
}

// BuildPatch writes a patch archive next to the path in build.iso. The
// archive contains everything needed to build the disc image from an
// original copy of the game.
func BuildPatch(p progress.Printer, files FileSource, compiled []byte, cfg *config.Config) error {
	p.Print(progress.Info, "Creating", "patch file")

	path := PatchName(cfg.Build.ISO)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("romhack: %w: couldn't create the patch file: %v", fault.IO, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("romhack: %w: couldn't create the patch file: %v", fault.IO, err)
	}

	w := bufio.NewWriter(f)
	if err := WritePatch(w, p, files, compiled, cfg); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("romhack: %w: %v", fault.IO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("romhack: %w: %v", fault.IO, err)
	}

	return nil
}

// WritePatch writes the patch archive to w. The configuration stored in the
// archive (the patch index) refers to the files in the archive and has no
// source or output disc.
func WritePatch(w io.Writer, p progress.Printer, files FileSource, compiled []byte, cfg *config.Config) error {
	z := archivefs.NewZipWriter(w)

	store := func(name string, path string) error {
		data, err := files.ReadFile(path)
		if err != nil {
			return fmt.Errorf("romhack: couldn't read %q to store it in the patch: %w", path, err)
		}
		return z.Add(name, data)
	}

	index := *cfg

	p.Print(progress.Info, "Storing", "replacement files")

	index.Files = make(map[string]string, len(cfg.Files))
	for i, path := range sortedKeys(cfg.Files) {
		name := fmt.Sprintf("replace%d.dat", i)
		if err := store(name, cfg.Files[path]); err != nil {
			return err
		}
		index.Files[path] = name
	}

	p.Print(progress.Info, "Storing", "libraries")

	if err := z.Add(patchCompiled, compiled); err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	index.Link.Libs = nil
	for i, lib := range cfg.Link.Libs {
		name := fmt.Sprintf("lib%d.a", i)
		if err := store(name, lib); err != nil {
			return err
		}
		index.Link.Libs = append(index.Link.Libs, name)
	}

	if cfg.Src.Patch != "" {
		p.Print(progress.Info, "Storing", patchAsm)
		if err := store(patchAsm, cfg.Src.Patch); err != nil {
			return err
		}
		index.Src.Patch = patchAsm
	}

	if cfg.Info.Image != "" {
		p.Print(progress.Info, "Storing", "banner")
		if err := store(patchBannerImage, cfg.Info.Image); err != nil {
			return err
		}
		index.Info.Image = patchBannerImage
	}

	p.Print(progress.Info, "Storing", "patch index")

	index.Src.ISO = ""
	index.Src.Src = ""
	index.Build = config.Build{}

	data, err := index.Encode()
	if err != nil {
		return fmt.Errorf("romhack: couldn't encode the patch index: %w", err)
	}
	if err := z.Add(config.Filename, data); err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	if err := z.Close(); err != nil {
		return fmt.Errorf("romhack: %w", err)
	}

	return nil
}

// ReadPatch returns the compiled library and the patch index from a patch
// archive.
func ReadPatch(z *archivefs.Zip) ([]byte, *config.Config, error) {
	data, err := z.ReadFile(config.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("romhack: the patch file doesn't contain the patch index: %w", err)
	}

	cfg, err := config.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("romhack: can't parse the patch index: %w", err)
	}

	compiled, err := z.ReadFile(patchCompiled)
	if err != nil {
		return nil, nil, fmt.Errorf("romhack: the patch file doesn't contain the compiled library: %w", err)
	}

	return compiled, cfg, nil
}

// ApplyPatch builds the disc image described by the patch at patchPath from
// the original game at isoPath. The new disc image is written to outPath.
func ApplyPatch(p progress.Printer, patchPath string, isoPath string, outPath string) error {
	p.Print(progress.Info, "Parsing", "patch")

	z, err := archivefs.OpenZip(patchPath)
	if err != nil {
		return fmt.Errorf("romhack: couldn't open the patch file: %w", err)
	}
	defer z.Close()

	compiled, cfg, err := ReadPatch(z)
	if err != nil {
		return err
	}

	cfg.Src.ISO = isoPath
	cfg.Build.ISO = outPath

	return BuildAndEmitISO(p, z, compiled, cfg)
}
