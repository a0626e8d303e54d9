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

// Package config reads and writes RomHack.toml, the project file describing
// how a rom hack is built.
//
// The same format is used for the index stored in a patch file, in which case
// the paths refer to entries in the patch archive rather than the file system.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// Filename is the name of the project file.
const Filename = "RomHack.toml"

// Environment variables that override values in the project file.
const (
	EnvISO    = "ROMHACK_ISO"
	EnvOutput = "ROMHACK_OUTPUT"
	EnvBase   = "ROMHACK_BASE"
)

// Src locates the inputs to the build.
type Src struct {
	// directory of the compiled project. the current directory if empty
	Src string `toml:"src,omitempty"`

	ISO   string `toml:"iso"`
	Patch string `toml:"patch,omitempty"`

	// path of the symbol map inside the disc image
	Map string `toml:"map,omitempty"`
}

// Build locates the outputs of the build.
type Build struct {
	Map string `toml:"map,omitempty"`
	ISO string `toml:"iso"`
}

// Link controls the linker.
type Link struct {
	Entries    []string `toml:"entries"`
	Base       string   `toml:"base"`
	Libs       []string `toml:"libs,omitempty"`
	GCSections bool     `toml:"gc-sections,omitempty"`
}

// Info replaces text and the image in the disc's banner. Empty fields leave
// the banner unchanged.
type Info struct {
	GameName          string `toml:"game-name,omitempty"`
	DeveloperName     string `toml:"developer-name,omitempty"`
	FullGameName      string `toml:"full-game-name,omitempty"`
	FullDeveloperName string `toml:"full-developer-name,omitempty"`
	Description       string `toml:"description,omitempty"`
	Image             string `toml:"image,omitempty"`
}

// IsEmpty returns true if there is nothing to change in the banner.
func (i Info) IsEmpty() bool {
	return i == Info{}
}

// Config is the decoded project file.
type Config struct {
	Src   Src   `toml:"src"`
	Build Build `toml:"build"`
	Link  Link  `toml:"link"`
	Info  Info  `toml:"info,omitempty"`

	// files to replace or add to the disc. the key is the path in the disc
	// and the value is the path of the new file
	Files map[string]string `toml:"files,omitempty"`
}

// Decode the contents of a project file.
func Decode(data []byte) (*Config, error) {
	var cfg Config

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: config: %v", fault.Parse, err)
	}

	for _, k := range md.Undecoded() {
		logger.Logf(logger.Allow, "config", "unrecognised key: %s", k.String())
	}

	// empty paths are allowed. patch indexes are written without them
	if !md.IsDefined("src", "iso") {
		return nil, fmt.Errorf("%w: config: missing src.iso", fault.Parse)
	}
	if !md.IsDefined("build", "iso") {
		return nil, fmt.Errorf("%w: config: missing build.iso", fault.Parse)
	}
	if cfg.Link.Base == "" {
		return nil, fmt.Errorf("%w: config: missing link.base", fault.Parse)
	}

	if cfg.Files == nil {
		cfg.Files = make(map[string]string)
	}

	return &cfg, nil
}

// Load the project file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: config: couldn't find %q: %v", fault.IO, path, err)
	}
	return Decode(data)
}

// Encode the configuration in the project file format.
func (cfg *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("%w: config: %v", fault.Encoding, err)
	}
	return buf.Bytes(), nil
}

// Override values with any of the ROMHACK_ environment variables that are
// set.
func (cfg *Config) Override() {
	override := func(name string, v *string) {
		if env.Has(name) {
			*v = env.Str(name)
			logger.Logf(logger.Allow, "config", "%s overridden by %s: %s", strings.ToLower(name), name, *v)
		}
	}
	override(EnvISO, &cfg.Src.ISO)
	override(EnvOutput, &cfg.Build.ISO)
	override(EnvBase, &cfg.Link.Base)
}

// BaseAddress returns the value of link.base.
func (cfg *Config) BaseAddress() (uint32, error) {
	return ParseBase(cfg.Link.Base)
}

// ParseBase parses an address written as a Go or Rust style integer literal.
// Hexadecimal, octal and binary prefixes are accepted, as are underscores
// between digits. For example "0x8040_1000".
func ParseBase(s string) (uint32, error) {
	literal := s
	s = strings.TrimSpace(s)

	base := 10
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(lower, "0o"):
		base = 8
		s = s[2:]
	case strings.HasPrefix(lower, "0b"):
		base = 2
		s = s[2:]
	}

	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), base, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: config: base address %q: %v", fault.Parse, literal, err)
	}
	return uint32(v), nil
}
