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

// Package basiclib provides the runtime functions that compiled code expects
// to be available but which the game does not export. The functions are
// hand assembled PowerPC and are packaged as a static library so that they
// can be linked like any other input.
//
// The library should be the final input to the linker so that definitions in
// the rom hack or the user's libraries take precedence.
package basiclib

import (
	"debug/elf"
	"encoding/binary"
	"sync"

	"github.com/jetsetilly/romhack/ar"
	"github.com/jetsetilly/romhack/objfile"
)

// memcpy(dst r3, src r4, n r5) returns dst.
var memcpy = []uint32{
	0x2c050000, // cmpwi r5, 0
	0x4d820020, // beqlr
	0x7ca903a6, // mtctr r5
	0x3884ffff, // addi r4, r4, -1
	0x38c3ffff, // addi r6, r3, -1
	0x8c040001, // lbzu r0, 1(r4)
	0x9c060001, // stbu r0, 1(r6)
	0x4200fff8, // bdnz -8
	0x4e800020, // blr
}

// memset(dst r3, c r4, n r5) returns dst.
var memset = []uint32{
	0x2c050000, // cmpwi r5, 0
	0x4d820020, // beqlr
	0x7ca903a6, // mtctr r5
	0x38c3ffff, // addi r6, r3, -1
	0x9c860001, // stbu r4, 1(r6)
	0x4200fffc, // bdnz -4
	0x4e800020, // blr
}

// memmove(dst r3, src r4, n r5) returns dst. copies forwards with memcpy
// unless the source is below the destination.
var memmove = []uint32{
	0x7c041840, // cmplw r4, r3
	0x41800008, // blt backwards
	0x48000000, // b memcpy
	// backwards:
	0x2c050000, // cmpwi r5, 0
	0x4d820020, // beqlr
	0x7ca903a6, // mtctr r5
	0x7c842a14, // add r4, r4, r5
	0x7cc32a14, // add r6, r3, r5
	0x8c04ffff, // lbzu r0, -1(r4)
	0x9c06ffff, // stbu r0, -1(r6)
	0x4200fff8, // bdnz -8
	0x4e800020, // blr
}

// offset of the tail call to memcpy in memmove
const memmoveTailCall = 8

func encode(code []uint32) []byte {
	b := make([]byte, len(code)*4)
	for i, w := range code {
		binary.BigEndian.PutUint32(b[i*4:], w)
	}
	return b
}

var archive []byte
var once sync.Once

func build() []byte {
	var w ar.Writer

	o := objfile.New()
	o.AddFunction("memcpy", encode(memcpy))
	w.Add("memcpy.o", o.Bytes())

	o = objfile.New()
	o.AddFunction("memset", encode(memset))
	w.Add("memset.o", o.Bytes())

	o = objfile.New()
	o.AddFunction("memmove", encode(memmove), objfile.Reloc{
		Offset: memmoveTailCall,
		Symbol: "memcpy",
		Type:   elf.R_PPC_REL24,
	})
	w.Add("memmove.o", o.Bytes())

	return w.Bytes()
}

// Archive returns the library as an ar archive. The returned slice must not
// be modified.
func Archive() []byte {
	once.Do(func() {
		archive = build()
	})
	return archive
}
