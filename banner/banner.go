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

// Package banner reads and writes opening.bnr, the file containing the image
// and text shown for a game in the GameCube's system menu.
//
// There are two versions of the file. BNR1 has one block of text and BNR2
// (used by PAL discs) has one block for each of six languages. The image is
// 96x32 pixels in the RGB5A3 format. Text is Shift-JIS on Japanese discs and
// Windows-1252 everywhere else.
package banner

import (
	"bytes"
	"fmt"
	"image"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	"github.com/jetsetilly/romhack/fault"
)

// Image dimensions.
const (
	Width  = 96
	Height = 32
)

// file layout
const (
	imageOffset = 0x20
	imageSize   = Width * Height * 2
	infoOffset  = imageOffset + imageSize
	infoSize    = 0x140

	shortNameSize = 0x20
	fullNameSize  = 0x40
	descSize      = 0x80
)

// Magic values for the two versions of the file.
const (
	BNR1 = "BNR1"
	BNR2 = "BNR2"
)

// Info is a block of text describing the game.
type Info struct {
	GameName          string
	DeveloperName     string
	FullGameName      string
	FullDeveloperName string
	Description       string
}

// Banner is the decoded contents of opening.bnr.
type Banner struct {
	Magic string
	Image *image.NRGBA
	Info  []Info

	// the reserved bytes following the magic
	reserved []byte
}

func textEncoding(japan bool) encoding.Encoding {
	if japan {
		return japanese.ShiftJIS
	}
	return charmap.Windows1252
}

// Parse the banner file.
func Parse(data []byte, japan bool) (*Banner, error) {
	if len(data) < infoOffset+infoSize {
		return nil, fmt.Errorf("%w: banner: file too short (%d bytes)", fault.Parse, len(data))
	}

	b := &Banner{
		Magic:    string(data[:4]),
		reserved: append([]byte{}, data[4:imageOffset]...),
	}

	var blocks int
	switch b.Magic {
	case BNR1:
		blocks = 1
	case BNR2:
		blocks = 6
	default:
		return nil, fmt.Errorf("%w: banner: unrecognised magic %q", fault.Parse, b.Magic)
	}

	if len(data) < infoOffset+infoSize*blocks {
		return nil, fmt.Errorf("%w: banner: file too short for %s (%d bytes)", fault.Parse, b.Magic, len(data))
	}

	b.Image = decodeRGB5A3(data[imageOffset:infoOffset])

	dec := textEncoding(japan).NewDecoder()
	str := func(field []byte) (string, error) {
		if i := bytes.IndexByte(field, 0); i >= 0 {
			field = field[:i]
		}
		s, err := dec.Bytes(field)
		if err != nil {
			return "", fmt.Errorf("%w: banner: %v", fault.Parse, err)
		}
		return string(s), nil
	}

	for i := 0; i < blocks; i++ {
		block := data[infoOffset+i*infoSize:]

		var info Info
		var err error
		fields := []struct {
			s    *string
			size int
		}{
			{&info.GameName, shortNameSize},
			{&info.DeveloperName, shortNameSize},
			{&info.FullGameName, fullNameSize},
			{&info.FullDeveloperName, fullNameSize},
			{&info.Description, descSize},
		}
		for _, f := range fields {
			*f.s, err = str(block[:f.size])
			if err != nil {
				return nil, err
			}
			block = block[f.size:]
		}

		b.Info = append(b.Info, info)
	}

	return b, nil
}

// Bytes encodes the banner. Text that is too long for its field is
// truncated. Text that can't be represented in the encoding is an error.
func (b *Banner) Bytes(japan bool) ([]byte, error) {
	out := make([]byte, infoOffset+infoSize*len(b.Info))
	copy(out, b.Magic)
	copy(out[4:imageOffset], b.reserved)
	copy(out[imageOffset:], encodeRGB5A3(b.Image))

	enc := textEncoding(japan).NewEncoder()

	for i, info := range b.Info {
		block := out[infoOffset+i*infoSize:]

		fields := []struct {
			s    string
			size int
		}{
			{info.GameName, shortNameSize},
			{info.DeveloperName, shortNameSize},
			{info.FullGameName, fullNameSize},
			{info.FullDeveloperName, fullNameSize},
			{info.Description, descSize},
		}
		for _, f := range fields {
			s, err := enc.Bytes([]byte(f.s))
			if err != nil {
				return nil, fmt.Errorf("%w: banner: %q: %v", fault.Encoding, f.s, err)
			}

			// leave room for the terminating zero. whole characters are
			// removed so that a multibyte character is never split
			for r := []rune(f.s); len(s) > f.size-1; {
				r = r[:len(r)-1]
				s, _ = enc.Bytes([]byte(string(r)))
			}
			copy(block[:f.size], s)
			block = block[f.size:]
		}
	}

	return out, nil
}
