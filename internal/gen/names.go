package gen

import (
	"strconv"
	"strings"
	"unicode"
)

// Stem hands out unique identifiers derived from one stem: the stem itself
// when free, then stem2, stem3 and so on. Every name handed out is added to
// the namespace.
type Stem struct {
	taken map[string]struct{}
	stem  string
	last  int
}

// NewStem creates a Stem. The nil namespace is treated as a free namespace.
func NewStem(stem string, namespace map[string]struct{}) *Stem {
	if namespace == nil {
		namespace = make(map[string]struct{})
	}

	return &Stem{taken: namespace, stem: stem}
}

func (s *Stem) Next() string {
	for {
		s.last++

		name := s.stem
		if s.last > 1 {
			name += strconv.Itoa(s.last)
		}

		if _, ok := s.taken[name]; !ok {
			s.taken[name] = struct{}{}
			return name
		}
	}
}

// exportedIdent turns a type name into an exported identifier prefix, e.g.
// "orderItem" -> "OrderItem". Characters not allowed in identifiers are dropped.
func exportedIdent(name string) string {
	var b strings.Builder

	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	out := []rune(b.String())
	if len(out) == 0 || !unicode.IsLetter(out[0]) {
		out = append([]rune("T"), out...)
	}

	out[0] = unicode.ToUpper(out[0])

	return string(out)
}
