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

// Package disc reads and writes GameCube disc images (GCM files).
//
// A disc is loaded into a filetree. The system areas of the disc (the disc
// header, the apploader, the main executable and the file system table) are
// presented as files in the "&&systemdata" directory:
//
//	&&systemdata/ISO.hdr
//	&&systemdata/AppLoader.ldr
//	&&systemdata/Start.dol
//	&&systemdata/Game.toc
//
// All other files are in the tree as they are on the disc. When the tree is
// written back to a disc image the file system table is rebuilt from the
// tree. Game.toc is ignored.
package disc

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/romhack/dol"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/filetree"
	"github.com/jetsetilly/romhack/logger"
)

// names of the files in the system data directory.
const (
	HeaderName    = "ISO.hdr"
	AppLoaderName = "AppLoader.ldr"
	DOLName       = "Start.dol"
	FSTName       = "Game.toc"
)

// disc layout.
const (
	// boot.bin and bi2.bin
	headerSize = 0x2440

	dolOffsetField  = 0x420
	fstOffsetField  = 0x424
	fstSizeField    = 0x428
	fstMaxSizeField = 0x42c

	appLoaderOffset     = 0x2440
	appLoaderHeaderSize = 0x20
	appLoaderSizeField  = 0x14
	appLoaderTrailer    = 0x18

	// size of an entry in the file system table
	fstEntrySize = 12

	// alignment of the executable and the file system table
	systemAlignment = 0x100

	// alignment of ordinary files on write
	fileAlignment = 0x8000
)

// Read a disc image into a file tree. The file data in the tree refers to the
// supplied data.
func Read(data []byte) (*filetree.Node, error) {
	if len(data) < headerSize+appLoaderHeaderSize {
		return nil, fmt.Errorf("%w: disc: image too short", fault.Parse)
	}

	order := binary.BigEndian

	root := filetree.NewDirectory("")
	sys := root.Add(filetree.NewDirectory(filetree.SystemData))

	sys.Add(filetree.NewFile(HeaderName, data[:headerSize]))

	apploaderSize := appLoaderHeaderSize +
		uint64(order.Uint32(data[appLoaderOffset+appLoaderSizeField:])) +
		uint64(order.Uint32(data[appLoaderOffset+appLoaderTrailer:]))
	apploader, err := slice(data, appLoaderOffset, apploaderSize, AppLoaderName)
	if err != nil {
		return nil, err
	}
	sys.Add(filetree.NewFile(AppLoaderName, apploader))

	dolOffset := uint64(order.Uint32(data[dolOffsetField:]))
	if dolOffset >= uint64(len(data)) {
		return nil, fmt.Errorf("%w: disc: executable offset %#x beyond end of image", fault.Parse, dolOffset)
	}
	dolSize, err := dol.Length(data[dolOffset:])
	if err != nil {
		return nil, fmt.Errorf("disc: %w", err)
	}
	executable, err := slice(data, dolOffset, uint64(dolSize), DOLName)
	if err != nil {
		return nil, err
	}
	sys.Add(filetree.NewFile(DOLName, executable))

	fstOffset := uint64(order.Uint32(data[fstOffsetField:]))
	fstSize := uint64(order.Uint32(data[fstSizeField:]))
	fst, err := slice(data, fstOffset, fstSize, FSTName)
	if err != nil {
		return nil, err
	}
	sys.Add(filetree.NewFile(FSTName, fst))

	if err := readFST(data, fst, root); err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "disc", "read %d entries from the file system table", len(fst)/fstEntrySize)

	return root, nil
}

func slice(data []byte, offset uint64, size uint64, name string) ([]byte, error) {
	if offset+size > uint64(len(data)) {
		return nil, fmt.Errorf("%w: disc: %s extends beyond end of image", fault.Parse, name)
	}
	return data[offset : offset+size], nil
}

// readFST adds the files and directories of the file system table to the
// root.
func readFST(data []byte, fst []byte, root *filetree.Node) error {
	order := binary.BigEndian

	if len(fst) < fstEntrySize {
		return fmt.Errorf("%w: disc: file system table too short", fault.Parse)
	}

	// the root entry holds the number of entries
	count := uint64(order.Uint32(fst[8:]))
	if count == 0 || count*fstEntrySize > uint64(len(fst)) {
		return fmt.Errorf("%w: disc: bad file system table entry count (%d)", fault.Parse, count)
	}
	names := fst[count*fstEntrySize:]

	name := func(i uint64) (string, error) {
		off := uint64(order.Uint32(fst[i*fstEntrySize:]) & 0x00ffffff)
		if off >= uint64(len(names)) {
			return "", fmt.Errorf("%w: disc: bad name offset for entry %d", fault.Parse, i)
		}
		end := off
		for end < uint64(len(names)) && names[end] != 0 {
			end++
		}
		return string(names[off:end]), nil
	}

	// entries between start and end are children of dir
	var walk func(dir *filetree.Node, start uint64, end uint64) error
	walk = func(dir *filetree.Node, start uint64, end uint64) error {
		for i := start; i < end; {
			e := fst[i*fstEntrySize:]
			n, err := name(i)
			if err != nil {
				return err
			}

			if e[0] != 0 {
				next := uint64(order.Uint32(e[8:]))
				if next <= i || next > end {
					return fmt.Errorf("%w: disc: bad directory entry %d (%s)", fault.Parse, i, n)
				}
				d := dir.Add(filetree.NewDirectory(n))
				if err := walk(d, i+1, next); err != nil {
					return err
				}
				i = next
				continue // for loop
			}

			offset := uint64(order.Uint32(e[4:]))
			size := uint64(order.Uint32(e[8:]))
			f, err := slice(data, offset, size, n)
			if err != nil {
				return err
			}
			dir.Add(filetree.NewFile(n, f))
			i++
		}
		return nil
	}

	return walk(root, 1, count)
}

// Japanese returns true if the disc header indicates a Japanese release.
func Japanese(root *filetree.Node) bool {
	hdr := root.Resolve(filetree.SystemData + "/" + HeaderName)
	if hdr == nil || len(hdr.Data) < 4 {
		return false
	}

	// the fourth character of the game code is the region
	return hdr.Data[3] == 'J'
}
