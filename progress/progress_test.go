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

package progress_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/romhack/logger"
	"github.com/jetsetilly/romhack/progress"
	"github.com/jetsetilly/romhack/test"
)

func TestTerminal(t *testing.T) {
	w := &test.CompareWriter{}
	p := progress.NewWriter(w, false)

	p.Print(progress.Info, "Compiling", "")
	p.Print(progress.Info, "Linking", "libcompiled.a")
	test.ExpectSuccess(t, w.Compare("   Compiling \n     Linking libcompiled.a\n"), w.String())

	w.Clear()
	p.Print(progress.Warning, "No banner to patch", "")
	test.ExpectSuccess(t, w.Compare("     warning No banner to patch\n"), w.String())

	w.Clear()
	p.Print(progress.Error, "Couldn't link", "")
	test.ExpectSuccess(t, w.Compare("       error Couldn't link\n"), w.String())
}

func TestColour(t *testing.T) {
	w := &test.CompareWriter{}
	p := progress.NewWriter(w, true)

	p.Print(progress.Info, "Writing", "game.iso")
	test.ExpectSuccess(t, w.Compare("\033[92;1m     Writing\033[0m game.iso\n"), w.String())

	w.Clear()
	p.Print(progress.Warning, "Symbol map", "missing")
	test.ExpectSuccess(t, w.Compare("\033[93;1m  Symbol map\033[0m missing\n"), w.String())
}

func TestRecorded(t *testing.T) {
	logger.Clear()

	var p progress.Printer = progress.Silent{}
	p.Print(progress.Info, "Parsing", "patch")
	p.Print(progress.Warning, "No symbol map specified or it wasn't found", "")

	w := &strings.Builder{}
	logger.Write(w)
	test.ExpectEquality(t, w.String(), "progress: info: Parsing patch\nprogress: warning: No symbol map specified or it wasn't found\n")
}
