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

// Package assembler compiles the patch assembly language into machine words
// destined for absolute addresses in the game's executable.
//
// The language is line based. Everything following a semicolon is a comment.
// A line ending with a colon is a label and sets the address of the following
// instructions. The label is an expression made from literals and bracketed
// symbol names:
//
//	0x80003100:
//	[OnFrame] + 0x10:
//	0x8000_0000 + [Vector] - 4:
//
// Any other line is an instruction. The supported instructions are:
//
//	b <target>          branch
//	bl <target>         branch and link
//	lis r<n>, <value>   load immediate shifted
//	nop                 no operation
//	u32 <value>         raw data word
//
// Branch targets can be literals or symbol names. Symbols are looked up first
// in the symbols of the freshly linked code and then in the known symbols of
// the game.
package assembler

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/logger"
)

// Instruction is a single machine word and the address it is to be written
// to.
type Instruction struct {
	Address uint32
	Data    uint32
}

func (ins Instruction) String() string {
	return fmt.Sprintf("%08x: %08x", ins.Address, ins.Data)
}

// Assembler holds the state of an assembly pass.
type Assembler struct {
	symbols map[string]uint32
	known   map[string]uint32
	pc      uint32
}

// NewAssembler is the preferred method of initialisation for the Assembler
// type. The symbols argument is the symbol table of the linked code and
// takes precedence over the known argument. Either map can be nil.
func NewAssembler(symbols map[string]uint32, known map[string]uint32) *Assembler {
	return &Assembler{
		symbols: symbols,
		known:   known,
	}
}

// PC returns the current value of the program counter.
func (asm *Assembler) PC() uint32 {
	return asm.pc
}

// AssembleAllLines assembles every line in order and returns the resulting
// instructions.
func (asm *Assembler) AssembleAllLines(lines []string) ([]Instruction, error) {
	var instructions []Instruction

	for n, line := range lines {
		line = reduceLine(line)
		if line == "" {
			continue // for loop
		}

		if strings.HasSuffix(line, ":") {
			pc, err := asm.evaluate(strings.TrimSuffix(line, ":"))
			if err != nil {
				return nil, fmt.Errorf("assembler: line %d: couldn't parse address label: %w", n+1, err)
			}
			asm.pc = pc
			continue // for loop
		}

		op, err := asm.parse(line)
		if err != nil {
			return nil, fmt.Errorf("assembler: line %d: %w", n+1, err)
		}

		data, err := op.encode(asm.pc)
		if err != nil {
			return nil, fmt.Errorf("assembler: line %d: %w", n+1, err)
		}

		instructions = append(instructions, Instruction{
			Address: asm.pc,
			Data:    data,
		})
		asm.pc += 4
	}

	logger.Logf(logger.Allow, "assembler", "%d instructions assembled", len(instructions))

	return instructions, nil
}

// reduceLine removes comments and surrounding whitespace.
func reduceLine(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// resolve an operand. literals first, then the fresh symbols and then the
// known symbols.
func (asm *Assembler) resolve(operand string) (uint32, error) {
	if v, err := parseLiteral(operand); err == nil {
		return uint32(v), nil
	}
	if v, ok := asm.symbols[operand]; ok {
		return v, nil
	}
	if v, ok := asm.known[operand]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: symbol not found: %s", fault.Resolution, operand)
}
