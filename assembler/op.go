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

package assembler

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// op is the parsed form of an instruction line.
type op interface {
	encode(pc uint32) (uint32, error)
}

// Branch is an unconditional relative branch to an absolute destination.
type Branch struct {
	Destination uint32
	Link        bool
}

// RawWord is emitted unchanged.
type RawWord struct {
	Value uint32
}

// LoadImmediateShifted is the lis instruction (addis with rA of zero).
type LoadImmediateShifted struct {
	Reg int64
	Imm int64
}

// Nop is the preferred no-operation instruction (ori r0, r0, 0).
type Nop struct{}

const (
	opcodeBranch = 18 << 26
	opcodeAddis  = 0x3c000000
	encodingNop  = 0x60000000

	// the 24 bit LI field of a branch is shifted left by two
	branchRange = 0x2000000
)

func (o Branch) encode(pc uint32) (uint32, error) {
	if o.Destination&0x03 != 0 {
		return 0, fmt.Errorf("%w: branch destination %#08x is not word aligned", fault.Encoding, o.Destination)
	}

	disp := int32(o.Destination - pc)
	if disp < -branchRange || disp > branchRange-4 {
		return 0, fmt.Errorf("%w: branch destination %#08x out of range of %#08x", fault.Encoding, o.Destination, pc)
	}

	data := uint32(opcodeBranch) | uint32(disp)&0x03fffffc
	if o.Link {
		data |= 1
	}
	return data, nil
}

func (o RawWord) encode(_ uint32) (uint32, error) {
	return o.Value, nil
}

func (o LoadImmediateShifted) encode(_ uint32) (uint32, error) {
	if o.Reg < 0 || o.Reg > 31 {
		return 0, fmt.Errorf("%w: register r%d does not exist", fault.Encoding, o.Reg)
	}
	if o.Imm < -0x8000 || o.Imm > 0xffff {
		return 0, fmt.Errorf("%w: immediate %#x does not fit in 16 bits", fault.Encoding, o.Imm)
	}
	return opcodeAddis | uint32(o.Reg)<<21 | uint32(o.Imm)&0xffff, nil
}

func (o Nop) encode(_ uint32) (uint32, error) {
	return encodingNop, nil
}

// parse an instruction line. the line has already been reduced.
func (asm *Assembler) parse(line string) (op, error) {
	mnemonic, operands := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		mnemonic, operands = line[:i], strings.TrimSpace(line[i:])
	}

	switch mnemonic {
	case "b", "bl":
		if operands == "" {
			return nil, fmt.Errorf("%w: %s requires a target", fault.Encoding, mnemonic)
		}
		dest, err := asm.resolve(operands)
		if err != nil {
			return nil, err
		}
		return Branch{Destination: dest, Link: mnemonic == "bl"}, nil

	case "u32":
		v, err := parseLiteral(operands)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse the u32 literal: %w", err)
		}
		return RawWord{Value: uint32(v)}, nil

	case "lis":
		reg, imm, ok := strings.Cut(operands, ",")
		if !ok {
			return nil, fmt.Errorf("%w: lis requires a register and an immediate", fault.Encoding)
		}
		reg = strings.TrimSpace(reg)
		imm = strings.TrimSpace(imm)

		if !strings.HasPrefix(reg, "r") {
			return nil, fmt.Errorf("%w: unexpected register: %s", fault.Encoding, reg)
		}
		r, err := parseLiteral(reg[1:])
		if err != nil {
			return nil, fmt.Errorf("couldn't parse the register index: %w", err)
		}
		i, err := parseLiteral(imm)
		if err != nil {
			return nil, fmt.Errorf("couldn't parse immediate for lis instruction: %w", err)
		}
		return LoadImmediateShifted{Reg: r, Imm: i}, nil

	case "nop":
		if operands != "" {
			return nil, fmt.Errorf("%w: nop takes no operands", fault.Encoding)
		}
		return Nop{}, nil
	}

	return nil, fmt.Errorf("%w: unknown instruction: %s", fault.Encoding, line)
}
