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

package main

import (
	"fmt"
	"os"

	"github.com/xyproto/env/v2"

	"github.com/jetsetilly/romhack/compile"
	"github.com/jetsetilly/romhack/config"
	"github.com/jetsetilly/romhack/logger"
	"github.com/jetsetilly/romhack/modalflag"
	"github.com/jetsetilly/romhack/progress"
	"github.com/jetsetilly/romhack/romhack"
	"github.com/jetsetilly/romhack/statsview"
	"github.com/jetsetilly/romhack/version"
)

// environment variable that echoes the log to stderr
const envEchoLog = "ROMHACK_ECHO_LOG"

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("BUILD", "NEW", "APPLY", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	if env.Bool(envEchoLog) {
		logger.SetEcho(os.Stderr)
	}

	logger.Log(logger.Allow, "romhack", version.String())

	printer := progress.NewTerminal(os.Stderr)

	switch md.Mode() {
	case "BUILD":
		err = build(md, printer)

	case "NEW":
		err = newProject(md, printer)

	case "APPLY":
		err = apply(md, printer)

	case "VERSION":
		fmt.Println(version.String())
	}

	if err != nil {
		printer.Print(progress.Error, err.Error(), "")
		os.Exit(20)
	}
}

func build(md *modalflag.Modes, printer progress.Printer) error {
	md.NewMode()
	md.AdditionalHelp("Builds the rom hack described by RomHack.toml in the current directory.")

	debug := md.AddBool("debug", false, "compile the rom hack in rust's debug mode")
	patch := md.AddBool("patch", false, "create a patch file instead of a disc image")
	stats := md.AddBool("statsview", false, "serve runtime statistics while building")
	log := md.AddBool("log", false, "echo the log to stderr")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	if *log {
		logger.SetEcho(os.Stderr)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stderr)
		} else {
			printer.Print(progress.Warning, "statsview is not available in this build", "")
		}
	}

	cfg, err := config.Load(config.Filename)
	if err != nil {
		return err
	}
	cfg.Override()

	cargo := compile.Cargo{
		Debug:  *debug,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	return romhack.Build(printer, cfg, cargo, *patch)
}

func newProject(md *modalflag.Modes, printer progress.Printer) error {
	md.NewMode()
	md.AdditionalHelp("Creates a new rom hack project with the given name.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("project name required for %s mode", md)
	case 1:
		cargo := compile.Cargo{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}
		return romhack.NewProject(printer, cargo, md.GetArg(0))
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func apply(md *modalflag.Modes, printer progress.Printer) error {
	md.NewMode()
	md.AdditionalHelp("Applies a patch to the original game. Arguments are: patch file, original disc image, output disc image.")

	log := md.AddBool("log", false, "echo the log to stderr")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stderr)
	}

	if len(md.RemainingArgs()) != 3 {
		return fmt.Errorf("%s mode requires a patch file, the original disc image and an output path", md)
	}

	return romhack.ApplyPatch(printer, md.GetArg(0), md.GetArg(1), md.GetArg(2))
}
