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

// Package progress reports the stages of a build to the user. Every message
// is also recorded in the central log, whichever Printer is in use.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/jetsetilly/romhack/logger"
)

// Kind of message.
type Kind int

// List of valid Kind values.
const (
	Info Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Printer is implemented by anything that can show build progress.
type Printer interface {
	Print(kind Kind, key string, val string)
}

func record(kind Kind, key string, val string) {
	if val == "" {
		logger.Logf(logger.Allow, "progress", "%s: %s", kind, key)
	} else {
		logger.Logf(logger.Allow, "progress", "%s: %s %s", kind, key, val)
	}
}

// Silent records messages in the log but shows nothing.
type Silent struct{}

// Print implements the Printer interface.
func (Silent) Print(kind Kind, key string, val string) {
	record(kind, key, val)
}

// keys are right aligned to this width
const keyWidth = 12

// Terminal prints messages one per line, with the key right aligned and
// coloured according to the kind of message.
type Terminal struct {
	w      io.Writer
	colour bool
}

// NewTerminal returns a Terminal writing to f. Colour is used if f is a
// terminal and the NO_COLOR environment variable is not set.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{
		w:      f,
		colour: isTerminal(f) && !env.Has("NO_COLOR"),
	}
}

// NewWriter returns a Terminal writing to any io.Writer.
func NewWriter(w io.Writer, colour bool) *Terminal {
	return &Terminal{w: w, colour: colour}
}

// Print implements the Printer interface.
func (t *Terminal) Print(kind Kind, key string, val string) {
	record(kind, key, val)

	if kind == Warning && val == "" {
		key, val = "warning", key
	} else if kind == Error && val == "" {
		key, val = "error", key
	}

	if t.colour {
		fmt.Fprintf(t.w, "%s%*s%s %s\n", pens[kind], keyWidth, key, normalPen, val)
	} else {
		fmt.Fprintf(t.w, "%*s %s\n", keyWidth, key, val)
	}
}
