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

// Package archivefs reads the files named in a project file. The files are
// either on disk or inside the zip archive of a patch.
package archivefs

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jetsetilly/romhack/fault"
)

// Disk reads files from the file system. Relative paths are relative to Dir,
// or to the current directory if Dir is empty.
type Disk struct {
	Dir string
}

// ReadFile returns the contents of the named file.
func (d Disk) ReadFile(path string) ([]byte, error) {
	if d.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(d.Dir, path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't read %q: %v", fault.IO, path, err)
	}
	return b, nil
}

// Zip reads files from a zip archive.
type Zip struct {
	r *zip.Reader

	// non-nil if the archive was opened by OpenZip()
	closer io.Closer
}

// NewZip reads the archive from r.
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, zipError(err)
	}
	return &Zip{r: zr}, nil
}

// OpenZip opens the archive at path. The archive should be closed with
// Close() when it is no longer required.
func OpenZip(path string) (*Zip, error) {
	zf, err := zip.OpenReader(path)
	if err != nil {
		return nil, zipError(err)
	}
	return &Zip{r: &zf.Reader, closer: zf}, nil
}

func zipError(err error) error {
	if errors.Is(err, zip.ErrFormat) {
		return fmt.Errorf("%w: not a valid archive: %v", fault.Parse, err)
	}
	return fmt.Errorf("%w: %v", fault.IO, err)
}

// Close the archive.
func (z *Zip) Close() error {
	if z.closer == nil {
		return nil
	}
	err := z.closer.Close()
	z.closer = nil
	return err
}

// ReadFile returns the contents of the named file in the archive.
func (z *Zip) ReadFile(path string) ([]byte, error) {
	f, err := z.r.Open(filepath.ToSlash(path))
	if err != nil {
		return nil, fmt.Errorf("%w: archive doesn't contain %q", fault.IO, path)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't read %q from archive: %v", fault.IO, path, err)
	}

	return b, nil
}

// Names returns the name of every file in the archive, in archive order.
func (z *Zip) Names() []string {
	var names []string
	for _, f := range z.r.File {
		names = append(names, f.Name)
	}
	return names
}
