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

package archivefs

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/jetsetilly/romhack/fault"
)

// ZipWriter creates a zip archive.
type ZipWriter struct {
	w *zip.Writer
}

// NewZipWriter returns a ZipWriter writing to w. Close() must be called to
// complete the archive.
func NewZipWriter(w io.Writer) *ZipWriter {
	return &ZipWriter{w: zip.NewWriter(w)}
}

// Add a file to the archive.
func (z *ZipWriter) Add(name string, data []byte) error {
	f, err := z.w.Create(name)
	if err != nil {
		return fmt.Errorf("%w: couldn't create %q in archive: %v", fault.IO, name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: couldn't store %q in archive: %v", fault.IO, name, err)
	}
	return nil
}

// Close writes the archive's directory.
func (z *ZipWriter) Close() error {
	if err := z.w.Close(); err != nil {
		return fmt.Errorf("%w: couldn't complete archive: %v", fault.IO, err)
	}
	return nil
}
