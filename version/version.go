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

// Package version identifies the build of romhack. The release number is set
// at link time:
//
//	go build -ldflags "-X github.com/jetsetilly/romhack/version.number=v0.1.0"
//
// Builds without a release number are described by their VCS revision.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name of the program.
const ApplicationName = "romhack"

// set by the linker
var number string

// String returns the release number, or "unreleased" or "local" if there
// isn't one, followed by the VCS revision if it is known.
func String() string {
	v := number
	revision := ""
	vcs := false

	if info, ok := debug.ReadBuildInfo(); ok {
		modified := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if modified && revision != "" {
			revision += "+dirty"
		}
	}

	if v == "" {
		if vcs {
			v = "unreleased"
		} else {
			v = "local"
		}
	}

	if revision == "" {
		return fmt.Sprintf("%s %s", ApplicationName, v)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, v, revision)
}
