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

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

const project = `
[src]
iso = "game.iso"
patch = "src/patch.asm"
map = "maps/framework.map"

[build]
map = "target/framework.map"
iso = "target/hack.iso"

[link]
entries = ["init", "update"]
base = "0x8040_1000"
libs = ["extra.a"]
gc-sections = true

[info]
game-name = "Hack"
full-developer-name = "Somebody"

[files]
"files/model.arc" = "assets/model.arc"
`

func TestDecode(t *testing.T) {
	cfg, err := config.Decode([]byte(project))
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, cfg.Src.ISO, "game.iso")
	test.ExpectEquality(t, cfg.Src.Patch, "src/patch.asm")
	test.ExpectEquality(t, cfg.Src.Map, "maps/framework.map")
	test.ExpectEquality(t, cfg.Src.Src, "")
	test.ExpectEquality(t, cfg.Build.Map, "target/framework.map")
	test.ExpectEquality(t, cfg.Build.ISO, "target/hack.iso")
	test.DemandEquality(t, len(cfg.Link.Entries), 2)
	test.ExpectEquality(t, cfg.Link.Entries[1], "update")
	test.ExpectEquality(t, cfg.Link.GCSections, true)
	test.ExpectEquality(t, cfg.Link.Libs[0], "extra.a")
	test.ExpectEquality(t, cfg.Info.GameName, "Hack")
	test.ExpectEquality(t, cfg.Info.FullDeveloperName, "Somebody")
	test.ExpectEquality(t, cfg.Info.IsEmpty(), false)
	test.ExpectEquality(t, cfg.Files["files/model.arc"], "assets/model.arc")

	base, err := cfg.BaseAddress()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, base, uint32(0x80401000))
}

func TestDecodeFailures(t *testing.T) {
	_, err := config.Decode([]byte("[src"))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	_, err = config.Decode([]byte(`
[build]
iso = "out.iso"
[link]
base = "0x80401000"
entries = []
`))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse), "missing src.iso")

	_, err = config.Decode([]byte(`
[src]
iso = "game.iso"
[build]
iso = "out.iso"
`))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse), "missing link.base")
}

func TestEncode(t *testing.T) {
	cfg, err := config.Decode([]byte(project))
	test.DemandSuccess(t, err)

	// patch indexes clear the path of the original game and the outputs
	cfg.Src.ISO = ""
	cfg.Build = config.Build{}

	data, err := cfg.Encode()
	test.DemandSuccess(t, err)

	again, err := config.Decode(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, again.Src.ISO, "")
	test.ExpectEquality(t, again.Build.ISO, "")
	test.ExpectEquality(t, again.Build.Map, "")
	test.ExpectEquality(t, again.Src.Patch, cfg.Src.Patch)
	test.ExpectEquality(t, again.Link.Base, cfg.Link.Base)
	test.ExpectEquality(t, again.Link.GCSections, true)
	test.ExpectEquality(t, again.Info, cfg.Info)
	test.ExpectEquality(t, again.Files["files/model.arc"], "assets/model.arc")
}

func TestOverride(t *testing.T) {
	cfg, err := config.Decode([]byte(project))
	test.DemandSuccess(t, err)

	t.Setenv(config.EnvISO, "other.iso")
	t.Setenv(config.EnvBase, "0x80500000")
	os.Unsetenv(config.EnvOutput)

	cfg.Override()
	test.ExpectEquality(t, cfg.Src.ISO, "other.iso")
	test.ExpectEquality(t, cfg.Build.ISO, "target/hack.iso")

	base, err := cfg.BaseAddress()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, base, uint32(0x80500000))
}

func TestParseBase(t *testing.T) {
	for _, c := range []struct {
		s string
		v uint32
	}{
		{"0x8040_1000", 0x80401000},
		{"0X80401000", 0x80401000},
		{"2147483648", 0x80000000},
		{"0b1_0000", 16},
		{"0o17", 15},
		{" 0x10 ", 16},
	} {
		v, err := config.ParseBase(c.s)
		test.ExpectSuccess(t, err, c.s)
		test.ExpectEquality(t, v, c.v, c.s)
	}

	for _, s := range []string{"", "0x", "banana", "0x1_0000_0000", "-1"} {
		_, err := config.ParseBase(s)
		test.ExpectSuccess(t, errors.Is(err, fault.Parse), s)
	}
}

func TestTemplateAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.Filename)
	test.DemandSuccess(t, os.WriteFile(path, []byte(config.Template("my-hack")), 0o644))

	cfg, err := config.Load(path)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cfg.Info.GameName, "my_hack")
	test.ExpectEquality(t, cfg.Build.ISO, "target/my_hack.iso")
	test.ExpectEquality(t, cfg.Link.Entries[0], "init")
	test.ExpectEquality(t, len(cfg.Files), 0)

	_, err = config.Load(filepath.Join(dir, "missing.toml"))
	test.ExpectSuccess(t, errors.Is(err, fault.IO))
}
