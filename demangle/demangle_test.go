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

package demangle_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/romhack/demangle"
	"github.com/jetsetilly/romhack/fault"
	"github.com/jetsetilly/romhack/test"
)

func TestLegacy(t *testing.T) {
	cases := []struct {
		mangled   string
		demangled string
	}{
		{"foo__Fv", "foo(void)"},
		{"foo__Fi", "foo(int)"},
		{"draw__6SpriteCFPCci", "Sprite::draw(const char*, int) const"},
		{"__ct__6SpriteFv", "Sprite::Sprite(void)"},
		{"__dt__6SpriteFv", "Sprite::~Sprite(void)"},
		{"update__Q23Foo3BarFUlRCf", "Foo::Bar::update(unsigned long, const float&)"},
		{"sInstance__6Player", "Player::sInstance"},
		{"__as__6VectorFRC6Vector", "Vector::operator=(const Vector&)"},
		{"setCallback__4TaskFPFPv_v", "Task::setCallback(void (*)(void*))"},
		{"fill__FA16_Uc", "fill(unsigned char[16])"},
		{"printf__FPCce", "printf(const char*, ...)"},
		{"run__7ManagerFM4TaskFPCvPv_v", "Manager::run(void (Task::*)(const void*, void*))"},
		{"foo___3Bar", "Bar::foo_"},
	}

	for _, c := range cases {
		s, err := demangle.Legacy(c.mangled)
		if test.ExpectSuccess(t, err, c.mangled) {
			test.ExpectEquality(t, s, c.demangled, c.mangled)
		}
	}
}

func TestLegacyFailure(t *testing.T) {
	for _, s := range []string{
		"main",
		"__start",
		"foo__",
		"foo__Fz",
		"foo__3BarFv_trailing",
		"foo__Q2",
		"foo__99Bar",
		"__ct__Fv",
		"Sprite::draw(const char*, int) const",
	} {
		_, err := demangle.Legacy(s)
		test.ExpectFailure(t, err, s)
		test.ExpectSuccess(t, errors.Is(err, fault.Parse), s)
	}
}

func TestToolchain(t *testing.T) {
	test.ExpectEquality(t, demangle.Toolchain("_ZN3foo3barEv"), "foo::bar()")
	test.ExpectEquality(t, demangle.Toolchain("init"), "init")
}
