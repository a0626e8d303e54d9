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

package assembler_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/romhack/assembler"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

func assemble(t *testing.T, symbols map[string]uint32, known map[string]uint32, lines ...string) []assembler.Instruction {
	t.Helper()
	asm := assembler.NewAssembler(symbols, known)
	ins, err := asm.AssembleAllLines(lines)
	test.DemandSuccess(t, err)
	return ins
}

func TestBranchAndLink(t *testing.T) {
	ins := assemble(t, map[string]uint32{"foo": 0x80002000}, nil,
		"0x80001000:",
		"bl foo",
	)
	test.DemandEquality(t, len(ins), 1)
	test.ExpectEquality(t, ins[0].Address, uint32(0x80001000))
	test.ExpectEquality(t, ins[0].Data, uint32(0x48001001))
}

func TestBranchBackwards(t *testing.T) {
	ins := assemble(t, nil, nil,
		"0x80001000:",
		"b 0x80000ff0",
	)
	test.DemandEquality(t, len(ins), 1)
	test.ExpectEquality(t, ins[0].Data, uint32(0x4bfffff0))
}

func TestNop(t *testing.T) {
	ins := assemble(t, nil, nil, "nop", "  nop ; comment")
	test.DemandEquality(t, len(ins), 2)
	test.ExpectEquality(t, ins[0].Data, uint32(0x60000000))
	test.ExpectEquality(t, ins[1].Data, uint32(0x60000000))
	test.ExpectEquality(t, ins[0].Address, uint32(0))
	test.ExpectEquality(t, ins[1].Address, uint32(4))
}

func TestLoadImmediateShifted(t *testing.T) {
	ins := assemble(t, nil, nil,
		"lis r3, 0x1234",
		"lis r31, -1",
		"lis r0,0xffff",
	)
	test.DemandEquality(t, len(ins), 3)
	test.ExpectEquality(t, ins[0].Data, uint32(0x3c601234))
	test.ExpectEquality(t, ins[1].Data, uint32(0x3fe0ffff))
	test.ExpectEquality(t, ins[2].Data, uint32(0x3c00ffff))
}

func TestRawWord(t *testing.T) {
	ins := assemble(t, nil, nil,
		"0x80003000:",
		"u32 0xdead_beef",
		"u32 42",
		"u32 010",
	)
	test.DemandEquality(t, len(ins), 3)
	test.ExpectEquality(t, ins[0].Data, uint32(0xdeadbeef))
	test.ExpectEquality(t, ins[1].Data, uint32(42))
	test.ExpectEquality(t, ins[2].Data, uint32(10))
	test.ExpectEquality(t, ins[2].Address, uint32(0x80003008))
}

func TestCommentsAndBlankLines(t *testing.T) {
	ins := assemble(t, nil, nil,
		"; a comment on its own",
		"",
		"   ",
		"0x100: ; label with a comment",
		"nop",
	)
	test.DemandEquality(t, len(ins), 1)
	test.ExpectEquality(t, ins[0].Address, uint32(0x100))
}

func TestLabelExpressions(t *testing.T) {
	symbols := map[string]uint32{"c": 0x30}
	known := map[string]uint32{"game[1]": 0x80000000}

	cases := []struct {
		label    string
		expected uint32
	}{
		{"0x10:", 0x10},
		{"0x10 + 8 - [c]:", 0xffffffe8},
		{"8-[c]+0x10:", 0xffffffe8},
		{"[game[1]] + 0x1_000:", 0x80001000},
		{"0xffff_fffc + 8:", 4},
		{"- 4:", 0xfffffffc},
	}

	for _, c := range cases {
		asm := assembler.NewAssembler(symbols, known)
		_, err := asm.AssembleAllLines([]string{c.label})
		test.ExpectSuccess(t, err, c.label)
		test.ExpectEquality(t, asm.PC(), c.expected, c.label)
	}
}

func TestLabelExpressionProperty(t *testing.T) {
	values := []uint32{0, 1, 0x7fffffff, 0x80000000, 0xfffffffc, 0x80401000}
	for _, a := range values {
		for _, b := range values {
			for _, c := range values {
				asm := assembler.NewAssembler(map[string]uint32{"C": c}, nil)
				label := []string{"0x" + hex(a) + " + 0x" + hex(b) + " - [C]:"}
				_, err := asm.AssembleAllLines(label)
				test.DemandSuccess(t, err)
				test.ExpectEquality(t, asm.PC(), a+b-c, label[0])
			}
		}
	}
}

func hex(v uint32) string {
	const digits = "0123456789abcdef"
	s := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		s[i] = digits[v&0xf]
		v >>= 4
	}
	return string(s)
}

func TestMalformedLabels(t *testing.T) {
	for _, label := range []string{
		":",
		"0x10 +:",
		"0x10 0x20:",
		"[foo:",
		"0x10 * 2:",
		"$:",
	} {
		asm := assembler.NewAssembler(map[string]uint32{"foo": 1}, nil)
		_, err := asm.AssembleAllLines([]string{label})
		test.ExpectFailure(t, err, label)
		test.ExpectSuccess(t, errors.Is(err, fault.Encoding), label)
	}
}

func TestFreshSymbolsTakePrecedence(t *testing.T) {
	ins := assemble(t,
		map[string]uint32{"OnFrame": 0x80402000},
		map[string]uint32{"OnFrame": 0x80005000, "Update": 0x80006000},
		"0x80401000:",
		"b OnFrame",
		"b Update",
	)
	test.DemandEquality(t, len(ins), 2)
	test.ExpectEquality(t, ins[0].Data, uint32(0x48001000))
	test.ExpectEquality(t, ins[1].Data, uint32(0x4bc04ffc))
}

func TestSymbolNotFound(t *testing.T) {
	asm := assembler.NewAssembler(nil, nil)
	_, err := asm.AssembleAllLines([]string{"bl missing"})
	test.ExpectSuccess(t, errors.Is(err, fault.Resolution))

	asm = assembler.NewAssembler(nil, nil)
	_, err = asm.AssembleAllLines([]string{"[missing]:"})
	test.ExpectSuccess(t, errors.Is(err, fault.Resolution))
}

func TestEncodingErrors(t *testing.T) {
	for _, line := range []string{
		"mflr r0",
		"lis r32, 0",
		"lis r3, 0x10000",
		"lis r3, -0x8001",
		"lis x3, 1",
		"lis r3",
		"u32 0x1_0000_0000",
		"u32 foo",
		"nop nop",
	} {
		asm := assembler.NewAssembler(map[string]uint32{"foo": 4}, nil)
		_, err := asm.AssembleAllLines([]string{line})
		test.ExpectFailure(t, err, line)
		test.ExpectSuccess(t, errors.Is(err, fault.Encoding), line)
	}
}

// branch targets are checked rather than masked into the LI field, so a
// misaligned or distant target is an error instead of a branch elsewhere
func TestBranchTargetChecked(t *testing.T) {
	ins := assemble(t, nil, nil, "0x80001000:", "b 0x81000ffc")
	test.DemandEquality(t, len(ins), 1)
	test.ExpectEquality(t, ins[0].Data, uint32(0x49fffffc))

	ins = assemble(t, nil, nil, "0x80001000:", "b 0x7f001000")
	test.DemandEquality(t, len(ins), 1)
	test.ExpectEquality(t, ins[0].Data, uint32(0x4a000000))

	for _, target := range []string{"0x80001002", "0x81001000", "0x7f000ffc"} {
		asm := assembler.NewAssembler(nil, nil)
		_, err := asm.AssembleAllLines([]string{"0x80001000:", "b " + target})
		test.ExpectSuccess(t, errors.Is(err, fault.Encoding), target)
	}
}
