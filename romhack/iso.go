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
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/romhack/assembler"
	"github.com/jetsetilly/romhack/banner"
	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/disc"
	"github.com/jetsetilly/romhack/dol"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/filetree"
	"github.com/jetsetilly/romhack/linker"
	"github.com/jetsetilly/romhack/linker/basiclib"
	"github.com/jetsetilly/romhack/logger"
	"github.com/jetsetilly/romhack/progress"
	"github.com/jetsetilly/romhack/symbolmap"
)

// size of the buffer used when writing the disc image
const writeBufferSize = 4 << 20

// BuildAndEmitISO reads the original game from the path in src.iso, builds
// the modified disc image and writes it to the path in build.iso.
func BuildAndEmitISO(p progress.Printer, files FileSource, compiled []byte, cfg *config.Config) error {
	p.Print(progress.Info, "Loading", "original game")

	original, err := os.ReadFile(cfg.Src.ISO)
	if err != nil {
		return fmt.Errorf("romhack: %w: couldn't find %q: %v", fault.IO, cfg.Src.ISO, err)
	}

	root, err := BuildISO(p, files, original, compiled, cfg)
	if err != nil {
		return err
	}

	p.Print(progress.Info, "Building", "ISO")

	if err := writeISO(cfg.Build.ISO, root); err != nil {
		return fmt.Errorf("romhack: couldn't write the final ISO: %w", err)
	}

	return nil
}

func writeISO(path string, root *filetree.Node) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", fault.IO, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fault.IO, err)
	}

	w := bufio.NewWriterSize(f, writeBufferSize)
	if err := disc.Write(w, root); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", fault.IO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", fault.IO, err)
	}

	return nil
}

// BuildISO applies the project to the original disc image and returns the
// file tree of the modified disc.
func BuildISO(p progress.Printer, files FileSource, original []byte, compiled []byte, cfg *config.Config) (*filetree.Node, error) {
	root, err := disc.Read(original)
	if err != nil {
		return nil, fmt.Errorf("romhack: couldn't parse the ISO: %w", err)
	}

	p.Print(progress.Info, "Replacing", "files")

	for _, path := range sortedKeys(cfg.Files) {
		data, err := files.ReadFile(cfg.Files[path])
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't read the file %q to store it in the ISO: %w", cfg.Files[path], err)
		}
		root.ResolveOrCreate(path).Data = data
		logger.Logf(logger.Allow, "romhack", "replaced %s with %s", path, cfg.Files[path])
	}

	var known map[string]uint32
	var originalMap []byte

	var mapFile *filetree.Node
	if cfg.Src.Map != "" {
		mapFile = root.Resolve(cfg.Src.Map)
	}

	if mapFile != nil {
		p.Print(progress.Info, "Parsing", "symbol map")
		known, err = symbolmap.Parse(mapFile.Data)
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't parse the game's symbol map: %w", err)
		}
		originalMap = mapFile.Data
	} else {
		p.Print(progress.Warning, "No symbol map specified or it wasn't found", "")
	}

	p.Print(progress.Info, "Linking", "")

	archives := make([][]byte, 0, len(cfg.Link.Libs)+2)
	archives = append(archives, compiled)
	for _, lib := range cfg.Link.Libs {
		data, err := files.ReadFile(lib)
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't load %q, did you build the project correctly?: %w", lib, err)
		}
		archives = append(archives, data)
	}
	archives = append(archives, basiclib.Archive())

	base, err := cfg.BaseAddress()
	if err != nil {
		return nil, fmt.Errorf("romhack: invalid base address: %w", err)
	}

	linked, err := linker.Link(archives, base, cfg.Link.Entries, known, linker.DiscardUnreachable(cfg.Link.GCSections))
	if err != nil {
		return nil, fmt.Errorf("romhack: couldn't link the rom hack: %w", err)
	}

	p.Print(progress.Info, "Creating", "symbol map")

	if err := symbolmap.Write(cfg.Build.Map, linked.Sections, originalMap); err != nil {
		return nil, fmt.Errorf("romhack: couldn't create the new symbol map: %w", err)
	}

	var instructions []assembler.Instruction
	if cfg.Src.Patch != "" {
		p.Print(progress.Info, "Parsing", "patch")

		asm, err := files.ReadFile(cfg.Src.Patch)
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't read the patch file %q: %w", cfg.Src.Patch, err)
		}

		lines := strings.Split(strings.ReplaceAll(string(asm), "\r\n", "\n"), "\n")
		instructions, err = assembler.NewAssembler(linked.Symbols, known).AssembleAllLines(lines)
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't assemble the patch file lines: %w", err)
		}
	}

	p.Print(progress.Info, "Patching", "game")

	exe := root.MainDOL()
	if exe == nil {
		return nil, fmt.Errorf("romhack: %w: dol file not found", fault.Resolution)
	}

	exe.Data, err = patchDOL(exe.Data, linked.Container, instructions)
	if err != nil {
		return nil, fmt.Errorf("romhack: couldn't patch the game: %w", err)
	}

	p.Print(progress.Info, "Patching", "banner")

	if bnr := root.Banner(); bnr != nil {
		bnr.Data, err = patchBanner(files, bnr.Data, disc.Japanese(root), cfg.Info)
		if err != nil {
			return nil, fmt.Errorf("romhack: couldn't patch the banner: %w", err)
		}
	} else {
		p.Print(progress.Warning, "No banner to patch", "")
	}

	return root, nil
}

// patchDOL adds the linked code to the executable and then applies the
// assembled instructions.
func patchDOL(data []byte, linked *dol.File, instructions []assembler.Instruction) ([]byte, error) {
	exe, err := dol.Parse(data)
	if err != nil {
		return nil, err
	}

	if err := exe.Append(linked); err != nil {
		return nil, err
	}

	if err := exe.Patch(instructions); err != nil {
		return nil, err
	}

	return exe.Bytes(), nil
}

func patchBanner(files FileSource, data []byte, japan bool, info config.Info) ([]byte, error) {
	if info.IsEmpty() {
		logger.Log(logger.Allow, "romhack", "banner unchanged")
		return data, nil
	}

	b, err := banner.Parse(data, japan)
	if err != nil {
		return nil, err
	}

	for i := range b.Info {
		set := func(field *string, v string) {
			if v != "" {
				*field = v
			}
		}
		set(&b.Info[i].GameName, info.GameName)
		set(&b.Info[i].DeveloperName, info.DeveloperName)
		set(&b.Info[i].FullGameName, info.FullGameName)
		set(&b.Info[i].FullDeveloperName, info.FullDeveloperName)
		set(&b.Info[i].Description, info.Description)
	}

	if info.Image != "" {
		raw, err := files.ReadFile(info.Image)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the banner replacement image: %w", err)
		}
		img, err := banner.DecodeImage(raw)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the banner replacement image: %w", err)
		}
		b.SetImage(img)
	}

	return b.Bytes(japan)
}
