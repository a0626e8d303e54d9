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

package banner_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/jetsetilly/romhack/banner"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

func blank(magic string, blocks int) []byte {
	data := make([]byte, 0x1820+0x140*blocks)
	copy(data, magic)
	return data
}

func TestParse(t *testing.T) {
	data := blank(banner.BNR1, 1)
	copy(data[0x1820:], "Zelda")
	copy(data[0x1840:], "Nintendo")
	copy(data[0x1860:], "The Legend of Zelda")
	copy(data[0x18e0:], "A description")

	b, err := banner.Parse(data, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b.Magic, banner.BNR1)
	test.DemandEquality(t, len(b.Info), 1)
	test.ExpectEquality(t, b.Info[0].GameName, "Zelda")
	test.ExpectEquality(t, b.Info[0].DeveloperName, "Nintendo")
	test.ExpectEquality(t, b.Info[0].FullGameName, "The Legend of Zelda")
	test.ExpectEquality(t, b.Info[0].FullDeveloperName, "")
	test.ExpectEquality(t, b.Info[0].Description, "A description")
	test.ExpectEquality(t, b.Image.Bounds(), image.Rect(0, 0, banner.Width, banner.Height))

	// BNR2 has six blocks
	b, err = banner.Parse(blank(banner.BNR2, 6), false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(b.Info), 6)

	_, err = banner.Parse(blank(banner.BNR2, 1), false)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	_, err = banner.Parse(blank("XXXX", 1), false)
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))

	_, err = banner.Parse([]byte("BNR1"), false)
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))
}

func TestText(t *testing.T) {
	b, err := banner.Parse(blank(banner.BNR1, 1), false)
	test.DemandSuccess(t, err)

	b.Info[0].GameName = "Pokémon"
	b.Info[0].Description = strings.Repeat("x", 200)
	data, err := b.Bytes(false)
	test.DemandSuccess(t, err)

	// é is a single byte in Windows-1252
	test.ExpectEquality(t, data[0x1820+3], byte(0xe9))

	c, err := banner.Parse(data, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Info[0].GameName, "Pokémon")
	test.ExpectEquality(t, c.Info[0].Description, strings.Repeat("x", 0x7f))

	// not representable in Windows-1252
	b.Info[0].GameName = "ゼルダの伝説"
	_, err = b.Bytes(false)
	test.ExpectSuccess(t, errors.Is(err, fault.Encoding))

	// but fine in Shift-JIS
	data, err = b.Bytes(true)
	test.DemandSuccess(t, err)
	c, err = banner.Parse(data, true)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Info[0].GameName, "ゼルダの伝説")
}

func TestImage(t *testing.T) {
	b, err := banner.Parse(blank(banner.BNR1, 1), false)
	test.DemandSuccess(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, banner.Width, banner.Height))
	for y := 0; y < banner.Height; y++ {
		for x := 0; x < banner.Width; x++ {
			if x < banner.Width/2 {
				img.SetNRGBA(x, y, color.NRGBA{R: 0xff, A: 0xff})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 0xff, A: 0x6d})
			}
		}
	}
	b.SetImage(img)

	data, err := b.Bytes(false)
	test.DemandSuccess(t, err)

	// first pixel of the first tile is opaque red
	test.ExpectEquality(t, data[0x20], byte(0xfc))
	test.ExpectEquality(t, data[0x21], byte(0x00))

	c, err := banner.Parse(data, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c.Image.NRGBAAt(0, 0), color.NRGBA{R: 0xff, A: 0xff})
	test.ExpectEquality(t, c.Image.NRGBAAt(banner.Width-1, banner.Height-1), color.NRGBA{B: 0xff, A: 0x6d})

	again, err := c.Bytes(false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(data, again))
}

func TestScaledImage(t *testing.T) {
	b, err := banner.Parse(blank(banner.BNR1, 1), false)
	test.DemandSuccess(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 192, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 192; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 0xff, A: 0xff})
		}
	}

	var buf bytes.Buffer
	test.DemandSuccess(t, png.Encode(&buf, img))

	decoded, err := banner.DecodeImage(buf.Bytes())
	test.DemandSuccess(t, err)

	b.SetImage(decoded)
	test.ExpectEquality(t, b.Image.Bounds(), image.Rect(0, 0, banner.Width, banner.Height))
	c := b.Image.NRGBAAt(40, 16)
	test.ExpectEquality(t, c.R, uint8(0))
	test.ExpectSuccess(t, c.G > 0xf0)
	test.ExpectSuccess(t, c.A > 0xf0)

	_, err = banner.DecodeImage([]byte("not an image"))
	test.ExpectSuccess(t, errors.Is(err, fault.Parse))
}
