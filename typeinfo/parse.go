package typeinfo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"entity-schema/primitive"
)

// Parse reads the text form produced by Type.String.
// Whitespace between tokens is ignored.
func Parse(text string) (Type, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty type definition")
	}

	p := &parser{src: text}

	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("invalid type %q: %w", text, err)
	}

	p.skipSpace()
	if !p.done() {
		return nil, fmt.Errorf("invalid type %q: unexpected %q at offset %d", text, p.src[p.pos:], p.pos)
	}

	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// generated code holding known-good literals.
func MustParse(text string) Type {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return t
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for !p.done() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.done() {
		return fmt.Errorf("expected %q, got end of input", c)
	}

	if p.src[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d, got %q", c, p.pos, p.src[p.pos])
	}

	p.pos++

	return nil
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.done() {
		return 0
	}

	return p.src[p.pos]
}

// ident reads a member name or keyword.
func (p *parser) ident() string {
	p.skipSpace()

	start := p.pos
	for !p.done() {
		c := rune(p.src[p.pos])
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' && c != '.' {
			break
		}
		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *parser) number() (uint, error) {
	p.skipSpace()

	start := p.pos
	for !p.done() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}

	if start == p.pos {
		return 0, fmt.Errorf("expected number at offset %d", start)
	}

	n, err := strconv.ParseUint(p.src[start:p.pos], 10, 32)
	if err != nil {
		return 0, err
	}

	return uint(n), nil
}

func (p *parser) parseType() (Type, error) {
	name := p.ident()

	switch name {
	case "":
		return nil, fmt.Errorf("expected type name at offset %d", p.pos)

	case "optional":
		item, err := p.parseArgs(1)
		if err != nil {
			return nil, err
		}
		opt, err := NewOptional(item[0])
		if err != nil {
			return nil, err
		}
		return opt, nil

	case "list":
		item, err := p.parseArgs(1)
		if err != nil {
			return nil, err
		}
		return List{Item: item[0]}, nil

	case "dict":
		kv, err := p.parseArgs(2)
		if err != nil {
			return nil, err
		}
		return Dict{Key: kv[0], Value: kv[1]}, nil

	case "decimal":
		return p.parseDecimal()

	case "struct":
		return p.parseStruct()

	default:
		kind, ok := primitive.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		return Primitive{Kind: kind}, nil
	}
}

func (p *parser) parseArgs(n int) ([]Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}

	args := make([]Type, 0, n)
	for i := range n {
		if i > 0 {
			if err := p.expect(','); err != nil {
				return nil, err
			}
		}

		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}

	if err := p.expect('>'); err != nil {
		return nil, err
	}

	return args, nil
}

func (p *parser) parseDecimal() (Type, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	precision, err := p.number()
	if err != nil {
		return nil, err
	}

	if err := p.expect(','); err != nil {
		return nil, err
	}

	scale, err := p.number()
	if err != nil {
		return nil, err
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}

	if precision == 0 || scale > precision {
		return nil, fmt.Errorf("decimal(%d,%d): precision must be positive and not less than scale", precision, scale)
	}

	return Decimal{Precision: precision, Scale: scale}, nil
}

func (p *parser) parseStruct() (Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}

	var s Struct
	if p.peek() == '>' {
		p.pos++
		return s, nil
	}

	for {
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("expected member name at offset %d", p.pos)
		}

		if err := p.expect(':'); err != nil {
			return nil, err
		}

		t, err := p.parseType()
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", name, err)
		}

		s.Members = append(s.Members, Member{Name: name, Type: t})

		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return s, nil
		default:
			return nil, fmt.Errorf("expected ',' or '>' at offset %d", p.pos)
		}
	}
}
