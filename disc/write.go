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

package disc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/filetree"
	"github.com/jetsetilly/romhack/logger"
)

func align(v uint64, a uint64) uint64 {
	return (v + a - 1) / a * a
}

// fstEntry is an entry of the file system table being built.
type fstEntry struct {
	dir    bool
	name   uint32
	parent uint32
	next   uint32
	file   *filetree.Node
	offset uint64
}

// Write the file tree as a disc image. The tree must contain the system data
// files. The file system table is built from the rest of the tree.
func Write(w io.Writer, root *filetree.Node) error {
	sys := root.Resolve(filetree.SystemData + "/" + HeaderName)
	if sys == nil || len(sys.Data) != headerSize {
		return fmt.Errorf("%w: disc: missing or malformed %s", fault.Parse, HeaderName)
	}
	apploader := root.Resolve(filetree.SystemData + "/" + AppLoaderName)
	if apploader == nil {
		return fmt.Errorf("%w: disc: missing %s", fault.Parse, AppLoaderName)
	}
	executable := root.MainDOL()
	if executable == nil {
		return fmt.Errorf("%w: disc: missing executable", fault.Parse)
	}

	// build the file system table. the root entry is first
	entries := []fstEntry{{dir: true}}
	var names []byte

	var build func(dir *filetree.Node, parent uint32)
	build = func(dir *filetree.Node, parent uint32) {
		for _, c := range dir.Children {
			if dir == root && c.Dir && c.Name == filetree.SystemData {
				continue // for loop
			}

			idx := uint32(len(entries))
			entries = append(entries, fstEntry{
				dir:    c.Dir,
				name:   uint32(len(names)),
				parent: parent,
				file:   c,
			})
			names = append(names, c.Name...)
			names = append(names, 0)

			if c.Dir {
				build(c, idx)
				entries[idx].next = uint32(len(entries))
			}
		}
	}
	build(root, 0)
	entries[0].next = uint32(len(entries))

	fstSize := uint64(len(entries))*fstEntrySize + uint64(len(names))

	// layout
	apploaderOffset := uint64(appLoaderOffset)
	dolOffset := align(apploaderOffset+uint64(len(apploader.Data)), systemAlignment)
	fstOffset := align(dolOffset+uint64(len(executable.Data)), systemAlignment)
	offset := fstOffset + fstSize
	for i := range entries {
		if entries[i].dir {
			continue // for loop
		}
		offset = align(offset, fileAlignment)
		entries[i].offset = offset
		offset += uint64(len(entries[i].file.Data))
	}
	if offset > 0xffffffff {
		return fmt.Errorf("%w: disc: image too large (%d bytes)", fault.Parse, offset)
	}

	order := binary.BigEndian

	fst := make([]byte, 0, fstSize)
	for _, e := range entries {
		var ent [fstEntrySize]byte
		order.PutUint32(ent[0:], e.name)
		if e.dir {
			ent[0] = 1
			order.PutUint32(ent[4:], e.parent)
			order.PutUint32(ent[8:], e.next)
		} else {
			order.PutUint32(ent[4:], uint32(e.offset))
			order.PutUint32(ent[8:], uint32(len(e.file.Data)))
		}
		fst = append(fst, ent[:]...)
	}
	fst = append(fst, names...)

	header := append([]byte{}, sys.Data...)
	order.PutUint32(header[dolOffsetField:], uint32(dolOffset))
	order.PutUint32(header[fstOffsetField:], uint32(fstOffset))
	order.PutUint32(header[fstSizeField:], uint32(fstSize))
	order.PutUint32(header[fstMaxSizeField:], uint32(fstSize))

	dw := &discWriter{w: w}
	dw.write(header)
	dw.pad(apploaderOffset)
	dw.write(apploader.Data)
	dw.pad(dolOffset)
	dw.write(executable.Data)
	dw.pad(fstOffset)
	dw.write(fst)
	for _, e := range entries {
		if e.dir {
			continue // for loop
		}
		dw.pad(e.offset)
		dw.write(e.file.Data)
	}

	if dw.err != nil {
		return fmt.Errorf("%w: disc: %v", fault.IO, dw.err)
	}

	logger.Logf(logger.Allow, "disc", "wrote %d entries (%d bytes)", len(entries), dw.n)

	return nil
}

// discWriter keeps track of the current offset and the first error.
type discWriter struct {
	w   io.Writer
	n   uint64
	err error
}

func (dw *discWriter) write(p []byte) {
	if dw.err != nil {
		return
	}
	var n int
	n, dw.err = dw.w.Write(p)
	dw.n += uint64(n)
}

var zeros [fileAlignment]byte

// pad with zeros until the offset is reached.
func (dw *discWriter) pad(offset uint64) {
	for dw.err == nil && dw.n < offset {
		n := offset - dw.n
		if n > uint64(len(zeros)) {
			n = uint64(len(zeros))
		}
		dw.write(zeros[:n])
	}
}
