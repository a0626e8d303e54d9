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

// Package filetree is an in memory tree of named files and directories. It
// is used to hold the contents of a disc image while files are replaced.
//
// Paths are separated with forward slashes and are relative to the node the
// method is called on.
package filetree

import (
	"strings"
)

// Node is either a file or a directory. Directories own their children.
type Node struct {
	Name     string
	Dir      bool
	Children []*Node
	Data     []byte
}

// NewDirectory returns an empty directory node.
func NewDirectory(name string) *Node {
	return &Node{Name: name, Dir: true}
}

// NewFile returns a file node.
func NewFile(name string, data []byte) *Node {
	return &Node{Name: name, Data: data}
}

// Add a child node to a directory. The child is returned.
func (n *Node) Add(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) child(name string, dir bool) *Node {
	for _, c := range n.Children {
		if c.Name == name && c.Dir == dir {
			return c
		}
	}
	return nil
}

// Resolve returns the file at the path. Returns nil if the path does not lead
// to a file.
func (n *Node) Resolve(path string) *Node {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	dir := n
	for _, s := range segments[:len(segments)-1] {
		dir = dir.child(s, true)
		if dir == nil {
			return nil
		}
	}

	return dir.child(segments[len(segments)-1], false)
}

// ResolveOrCreate returns the file at the path. Missing directories and the
// file itself are created as required. A new file is empty.
func (n *Node) ResolveOrCreate(path string) *Node {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	dir := n
	for _, s := range segments[:len(segments)-1] {
		d := dir.child(s, true)
		if d == nil {
			d = dir.Add(NewDirectory(s))
		}
		dir = d
	}

	name := segments[len(segments)-1]
	f := dir.child(name, false)
	if f == nil {
		f = dir.Add(NewFile(name, nil))
	}
	return f
}

// SystemData is the name of the directory holding the disc's system files.
const SystemData = "&&systemdata"

// MainDOL returns the executable of the disc. Returns nil if there isn't one.
func (n *Node) MainDOL() *Node {
	sys := n.child(SystemData, true)
	if sys == nil {
		return nil
	}
	for _, c := range sys.Children {
		if !c.Dir && strings.HasSuffix(c.Name, ".dol") {
			return c
		}
	}
	return nil
}

// Banner returns the opening.bnr file in the root of the disc. Returns nil if
// there isn't one.
func (n *Node) Banner() *Node {
	return n.child("opening.bnr", false)
}

// Walk calls the function for the node and every node beneath it, depth
// first, in the order children were added. The path of the root node is the
// empty string.
func (n *Node) Walk(fn func(path string, node *Node)) {
	n.walk("", fn)
}

func (n *Node) walk(path string, fn func(path string, node *Node)) {
	fn(path, n)
	for _, c := range n.Children {
		p := c.Name
		if path != "" {
			p = path + "/" + c.Name
		}
		c.walk(p, fn)
	}
}
