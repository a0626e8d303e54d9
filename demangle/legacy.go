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

package demangle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/romhack/fault"
)

// special function names. the key is the mangled form that precedes the
// class qualification
var operators = map[string]string{
	"__nw":  "operator new",
	"__nwa": "operator new[]",
	"__dl":  "operator delete",
	"__dla": "operator delete[]",
	"__pl":  "operator+",
	"__mi":  "operator-",
	"__ml":  "operator*",
	"__dv":  "operator/",
	"__md":  "operator%",
	"__er":  "operator^",
	"__ad":  "operator&",
	"__or":  "operator|",
	"__co":  "operator~",
	"__nt":  "operator!",
	"__as":  "operator=",
	"__lt":  "operator<",
	"__gt":  "operator>",
	"__apl": "operator+=",
	"__ami": "operator-=",
	"__amu": "operator*=",
	"__adv": "operator/=",
	"__amd": "operator%=",
	"__aer": "operator^=",
	"__aad": "operator&=",
	"__aor": "operator|=",
	"__ls":  "operator<<",
	"__rs":  "operator>>",
	"__ars": "operator>>=",
	"__als": "operator<<=",
	"__eq":  "operator==",
	"__ne":  "operator!=",
	"__le":  "operator<=",
	"__ge":  "operator>=",
	"__aa":  "operator&&",
	"__oo":  "operator||",
	"__pp":  "operator++",
	"__mm":  "operator--",
	"__cm":  "operator,",
	"__rm":  "operator->*",
	"__rf":  "operator->",
	"__cl":  "operator()",
	"__vc":  "operator[]",
}

var builtins = map[byte]string{
	'v': "void",
	'b': "bool",
	'c': "char",
	's': "short",
	'i': "int",
	'l': "long",
	'x': "long long",
	'f': "float",
	'd': "double",
	'r': "long double",
	'w': "wchar_t",
	'e': "...",
}

// Legacy demangles a name mangled with the CodeWarrior scheme. For example,
// "draw__6SpriteCFPCci" becomes "Sprite::draw(const char*, int) const".
//
// An error is returned for names that are not mangled or that cannot be
// fully consumed. Callers that want the raw name in that case should fall
// back to it themselves.
func Legacy(name string) (string, error) {
	// the search for the separator starts after any leading underscores
	start := 0
	for start < len(name) && name[start] == '_' {
		start++
	}

	for i := start; i < len(name)-1; i++ {
		if name[i] != '_' || name[i+1] != '_' {
			continue
		}

		// skip past runs of underscores so that the separator is always the
		// final pair. "foo___3Bar" has the base name "foo_"
		j := i
		for j+2 < len(name) && name[j+2] == '_' {
			j++
		}

		s, err := legacy(name[:j], name[j+2:])
		if err == nil {
			return s, nil
		}
		i = j
	}

	return "", fmt.Errorf("%w: %s is not a mangled name", fault.Parse, name)
}

func legacy(base string, mangled string) (string, error) {
	if base == "" || mangled == "" {
		return "", fmt.Errorf("%w: empty name", fault.Parse)
	}

	p := &parser{s: mangled}

	// optional class qualification
	var class []string
	if p.peek() == 'Q' || isDigit(p.peek()) {
		var err error
		class, err = p.qualified()
		if err != nil {
			return "", err
		}
	}

	var s strings.Builder
	for _, c := range class {
		s.WriteString(c)
		s.WriteString("::")
	}

	switch base {
	case "__ct":
		if len(class) == 0 {
			return "", fmt.Errorf("%w: constructor without class", fault.Parse)
		}
		s.WriteString(stripTemplate(class[len(class)-1]))
	case "__dt":
		if len(class) == 0 {
			return "", fmt.Errorf("%w: destructor without class", fault.Parse)
		}
		s.WriteString("~")
		s.WriteString(stripTemplate(class[len(class)-1]))
	default:
		if op, ok := operators[base]; ok {
			s.WriteString(op)
		} else if strings.HasPrefix(base, "__") {
			return "", fmt.Errorf("%w: unknown special name %s", fault.Parse, base)
		} else {
			s.WriteString(base)
		}
	}

	// data symbols have no function signature
	if p.done() {
		if len(class) == 0 {
			return "", fmt.Errorf("%w: no qualification", fault.Parse)
		}
		return s.String(), nil
	}

	var constFunc bool
	if p.peek() == 'C' {
		constFunc = true
		p.pos++
	}

	if p.peek() != 'F' {
		return "", fmt.Errorf("%w: expected function signature at %q", fault.Parse, p.rest())
	}
	p.pos++

	params, err := p.params()
	if err != nil {
		return "", err
	}
	if !p.done() {
		return "", fmt.Errorf("%w: trailing characters %q", fault.Parse, p.rest())
	}

	s.WriteString("(")
	s.WriteString(params)
	s.WriteString(")")
	if constFunc {
		s.WriteString(" const")
	}

	return s.String(), nil
}

func stripTemplate(s string) string {
	if i := strings.IndexByte(s, '<'); i > 0 {
		return s[:i]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) done() bool {
	return p.pos >= len(p.s)
}

func (p *parser) rest() string {
	return p.s[p.pos:]
}

func (p *parser) number() (int, error) {
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return 0, fmt.Errorf("%w: expected number at %q", fault.Parse, p.s[start:])
	}
	return strconv.Atoi(p.s[start:p.pos])
}

// name parses a length prefixed identifier.
func (p *parser) name() (string, error) {
	n, err := p.number()
	if err != nil {
		return "", err
	}
	if n == 0 || p.pos+n > len(p.s) {
		return "", fmt.Errorf("%w: bad name length %d", fault.Parse, n)
	}
	s := p.s[p.pos : p.pos+n]
	p.pos += n
	return s, nil
}

// qualified parses either a single length prefixed name or a Q<n> list of
// names.
func (p *parser) qualified() ([]string, error) {
	if p.peek() != 'Q' {
		n, err := p.name()
		if err != nil {
			return nil, err
		}
		return []string{n}, nil
	}
	p.pos++

	if !isDigit(p.peek()) {
		return nil, fmt.Errorf("%w: bad qualification", fault.Parse)
	}
	count := int(p.peek() - '0')
	p.pos++

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n, err := p.name()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// params parses types until the end of the string or an underscore, which
// introduces the return type of a function type.
func (p *parser) params() (string, error) {
	var types []string
	for !p.done() && p.peek() != '_' {
		t, err := p.typ()
		if err != nil {
			return "", err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return "", fmt.Errorf("%w: empty parameter list", fault.Parse)
	}
	if len(types) == 1 && types[0] == "void" {
		return "void", nil
	}
	return strings.Join(types, ", "), nil
}

// function parses the remainder of a function type after the F. the return
// type follows an underscore.
func (p *parser) function() (params string, ret string, err error) {
	params, err = p.params()
	if err != nil {
		return "", "", err
	}
	if p.peek() != '_' {
		return "", "", fmt.Errorf("%w: function type without return type", fault.Parse)
	}
	p.pos++
	ret, err = p.typ()
	if err != nil {
		return "", "", err
	}
	return params, ret, nil
}

func (p *parser) typ() (string, error) {
	c := p.peek()
	if c == 0 {
		return "", fmt.Errorf("%w: unexpected end of type", fault.Parse)
	}

	switch {
	case c == 'C' || c == 'V':
		qual := "const"
		if c == 'V' {
			qual = "volatile"
		}
		p.pos++
		t, err := p.typ()
		if err != nil {
			return "", err
		}
		if strings.HasSuffix(t, "*") || strings.HasSuffix(t, "&") {
			return t + " " + qual, nil
		}
		return qual + " " + t, nil

	case c == 'U' || c == 'S':
		sign := "unsigned"
		if c == 'S' {
			sign = "signed"
		}
		p.pos++
		t, ok := builtins[p.peek()]
		if !ok || t == "void" || t == "..." {
			return "", fmt.Errorf("%w: bad %s type", fault.Parse, sign)
		}
		p.pos++
		return sign + " " + t, nil

	case c == 'P' || c == 'R':
		ptr := "*"
		if c == 'R' {
			ptr = "&"
		}
		p.pos++
		if p.peek() == 'F' {
			p.pos++
			params, ret, err := p.function()
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)(%s)", ret, ptr, params), nil
		}
		t, err := p.typ()
		if err != nil {
			return "", err
		}
		return t + ptr, nil

	case c == 'A':
		p.pos++
		n, err := p.number()
		if err != nil {
			return "", err
		}
		if p.peek() != '_' {
			return "", fmt.Errorf("%w: bad array type", fault.Parse)
		}
		p.pos++
		t, err := p.typ()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%d]", t, n), nil

	case c == 'M':
		p.pos++
		class, err := p.qualified()
		if err != nil {
			return "", err
		}
		cls := strings.Join(class, "::")

		var constFunc bool
		if p.peek() == 'C' && p.pos+1 < len(p.s) && p.s[p.pos+1] == 'F' {
			constFunc = true
			p.pos++
		}
		if p.peek() == 'F' {
			p.pos++
			params, ret, err := p.function()
			if err != nil {
				return "", err
			}
			s := fmt.Sprintf("%s (%s::*)(%s)", ret, cls, params)
			if constFunc {
				s += " const"
			}
			return s, nil
		}
		t, err := p.typ()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s::*", t, cls), nil

	case c == 'F':
		p.pos++
		params, ret, err := p.function()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s (%s)", ret, params), nil

	case c == 'Q' || isDigit(c):
		class, err := p.qualified()
		if err != nil {
			return "", err
		}
		return strings.Join(class, "::"), nil
	}

	if t, ok := builtins[c]; ok {
		p.pos++
		return t, nil
	}

	return "", fmt.Errorf("%w: unknown type code %q", fault.Parse, c)
}
