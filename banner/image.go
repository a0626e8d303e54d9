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

package banner

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	// image formats accepted for replacement images
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"

	"github.com/jetsetilly/romhack/fault"
)

// the image is stored as 4x4 pixel tiles
const tile = 4

func expand5(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}

func expand4(v uint16) uint8 {
	return uint8(v<<4 | v)
}

func expand3(v uint16) uint8 {
	return uint8(v<<5 | v<<2 | v>>1)
}

func decodeRGB5A3(data []byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, Width, Height))

	i := 0
	for ty := 0; ty < Height; ty += tile {
		for tx := 0; tx < Width; tx += tile {
			for y := ty; y < ty+tile; y++ {
				for x := tx; x < tx+tile; x++ {
					v := binary.BigEndian.Uint16(data[i:])
					i += 2

					var c color.NRGBA
					if v&0x8000 == 0x8000 {
						c.R = expand5(v >> 10 & 0x1f)
						c.G = expand5(v >> 5 & 0x1f)
						c.B = expand5(v & 0x1f)
						c.A = 0xff
					} else {
						c.A = expand3(v >> 12 & 0x07)
						c.R = expand4(v >> 8 & 0x0f)
						c.G = expand4(v >> 4 & 0x0f)
						c.B = expand4(v & 0x0f)
					}
					img.SetNRGBA(x, y, c)
				}
			}
		}
	}

	return img
}

func encodeRGB5A3(img *image.NRGBA) []byte {
	data := make([]byte, imageSize)
	if img == nil {
		return data
	}

	i := 0
	for ty := 0; ty < Height; ty += tile {
		for tx := 0; tx < Width; tx += tile {
			for y := ty; y < ty+tile; y++ {
				for x := tx; x < tx+tile; x++ {
					c := img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)

					var v uint16
					if c.A >= 0xe0 {
						v = 0x8000 | uint16(c.R>>3)<<10 | uint16(c.G>>3)<<5 | uint16(c.B>>3)
					} else {
						v = uint16(c.A>>5)<<12 | uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
					}
					binary.BigEndian.PutUint16(data[i:], v)
					i += 2
				}
			}
		}
	}

	return data
}

// DecodeImage decodes an image file in any of the supported formats (PNG,
// JPEG, GIF, BMP, TIFF or WebP).
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: banner: %v", fault.Parse, err)
	}
	return img, nil
}

// SetImage replaces the banner image. Images that are not 96x32 are scaled.
func (b *Banner) SetImage(img image.Image) {
	dst := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	if img.Bounds().Dx() == Width && img.Bounds().Dy() == Height {
		draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	}
	b.Image = dst
}
