package machine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/mbt/pkg/domain"
)

// The guard and action language is deliberately small:
//
//	guard  := or
//	or     := and ('||' and)*
//	and    := not ('&&' not)*
//	not    := '!' not | cmp
//	cmp    := sum (('=='|'!='|'<'|'<='|'>'|'>=') sum)?
//	sum    := atom (('+'|'-') atom)*
//	atom   := IDENT | NUMBER | STRING | 'true' | 'false' | '(' or ')'
//
//	action := stmt (';' stmt)*
//	stmt   := IDENT '=' or | IDENT '+=' sum | IDENT '-=' sum | IDENT '++' | IDENT '--'
//
// Every value is a string. A value is truthy when it is neither empty nor "false".
// Comparisons and arithmetic are numeric when both operands parse as numbers.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '_' || unicode.IsLetter(c):
			start := i
			for i < len(src) && (src[i] == '_' || src[i] == '.' || unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case unicode.IsDigit(c):
			start := i
			for i < len(src) && (unicode.IsDigit(rune(src[i])) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start})
		case c == '\'' || c == '"':
			start := i
			i++
			for i < len(src) && rune(src[i]) != c {
				i++
			}
			if i >= len(src) {
				return nil, fmt.Errorf("unterminated string at offset %d", start)
			}
			toks = append(toks, token{kind: tokString, text: src[start+1 : i], pos: start})
			i++
		default:
			op := ""
			if i+1 < len(src) {
				switch two := src[i : i+2]; two {
				case "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=":
					op = two
				}
			}
			if op == "" {
				switch c {
				case '!', '<', '>', '(', ')', '=', ';', '+', '-':
					op = string(c)
				default:
					return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
				}
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// node is a compiled expression.
type node interface {
	eval(data DataSpace) (string, error)
	vars(into map[string]struct{})
}

type literal string

func (l literal) eval(DataSpace) (string, error) { return string(l), nil }
func (l literal) vars(map[string]struct{})       {}

type variable string

func (v variable) eval(data DataSpace) (string, error) {
	val, ok := data[string(v)]
	if !ok {
		return "", &domain.UnknownVariableError{Name: string(v)}
	}
	return val, nil
}
func (v variable) vars(into map[string]struct{}) { into[string(v)] = struct{}{} }

type unary struct {
	operand node
}

func (u unary) eval(data DataSpace) (string, error) {
	val, err := u.operand.eval(data)
	if err != nil {
		return "", err
	}
	return formatBool(!truthy(val)), nil
}
func (u unary) vars(into map[string]struct{}) { u.operand.vars(into) }

type binary struct {
	op          string
	left, right node
}

func (b binary) vars(into map[string]struct{}) {
	b.left.vars(into)
	b.right.vars(into)
}

func (b binary) eval(data DataSpace) (string, error) {
	l, err := b.left.eval(data)
	if err != nil {
		return "", err
	}
	switch b.op {
	case "&&":
		if !truthy(l) {
			return formatBool(false), nil
		}
	case "||":
		if truthy(l) {
			return formatBool(true), nil
		}
	}
	r, err := b.right.eval(data)
	if err != nil {
		return "", err
	}

	switch b.op {
	case "&&", "||":
		return formatBool(truthy(r)), nil
	case "+", "-":
		return arithmetic(b.op, l, r)
	}

	lf, lerr := strconv.ParseFloat(l, 64)
	rf, rerr := strconv.ParseFloat(r, 64)
	numeric := lerr == nil && rerr == nil
	var cmp int
	switch {
	case numeric && lf < rf:
		cmp = -1
	case numeric && lf > rf:
		cmp = 1
	case numeric:
		cmp = 0
	default:
		cmp = strings.Compare(l, r)
	}

	switch b.op {
	case "==":
		return formatBool(cmp == 0), nil
	case "!=":
		return formatBool(cmp != 0), nil
	case "<":
		return formatBool(cmp < 0), nil
	case "<=":
		return formatBool(cmp <= 0), nil
	case ">":
		return formatBool(cmp > 0), nil
	case ">=":
		return formatBool(cmp >= 0), nil
	}
	return "", fmt.Errorf("unsupported operator %q", b.op)
}

func arithmetic(op, l, r string) (string, error) {
	lf, lerr := strconv.ParseFloat(l, 64)
	rf, rerr := strconv.ParseFloat(r, 64)
	if lerr != nil || rerr != nil {
		if op == "+" {
			return l + r, nil
		}
		return "", fmt.Errorf("operator '-' needs numbers, got %q and %q", l, r)
	}
	if op == "+" {
		return formatNumber(lf + rf), nil
	}
	return formatNumber(lf - rf), nil
}

func truthy(v string) bool {
	return v != "" && v != "false"
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(op string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%q at offset %d: %s", p.src, p.peek().pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binary{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.accept("&&") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = binary{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (node, error) {
	if p.accept("!") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return unary{operand: operand}, nil
	}
	return p.parseCmp()
}

func (p *parser) parseCmp() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp {
		switch t.text {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			right, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			return binary{op: t.text, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text, left: left, right: right}
	}
}

func (p *parser) parseAtom() (node, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		if t.text == "true" || t.text == "false" {
			return literal(t.text), nil
		}
		return variable(t.text), nil
	case tokNumber:
		if _, err := strconv.ParseFloat(t.text, 64); err != nil {
			return nil, fmt.Errorf("%q: malformed number %q", p.src, t.text)
		}
		return literal(t.text), nil
	case tokString:
		return literal(t.text), nil
	case tokOp:
		if t.text == "-" && p.peek().kind == tokNumber {
			num := p.next()
			if _, err := strconv.ParseFloat(num.text, 64); err != nil {
				return nil, fmt.Errorf("%q: malformed number %q", p.src, num.text)
			}
			return literal("-" + num.text), nil
		}
		if t.text == "(" {
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if !p.accept(")") {
				return nil, p.errorf("expected ')'")
			}
			return inner, nil
		}
	case tokEOF:
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("%q at offset %d: unexpected %q", p.src, t.pos, t.text)
}

// compiledGuard is a parsed guard expression.
type compiledGuard struct {
	root      node
	variables []string
}

func compileGuard(src string) (*compiledGuard, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected trailing %q", p.peek().text)
	}
	set := make(map[string]struct{})
	root.vars(set)
	g := &compiledGuard{root: root}
	for name := range set {
		g.variables = append(g.variables, name)
	}
	return g, nil
}

// evaluate checks every referenced variable up front, so an undefined name fails
// the same way whichever branch the data would have taken.
func (g *compiledGuard) evaluate(data DataSpace) (bool, error) {
	for _, name := range g.variables {
		if _, ok := data[name]; !ok {
			return false, &domain.UnknownVariableError{Name: name}
		}
	}
	val, err := g.root.eval(data)
	if err != nil {
		return false, err
	}
	return truthy(val), nil
}

type statement struct {
	target string
	op     string
	value  node
}

type compiledAction []statement

func compileAction(src string) (compiledAction, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var stmts compiledAction
	for p.peek().kind != tokEOF {
		if p.accept(";") {
			continue
		}
		target := p.next()
		if target.kind != tokIdent {
			return nil, fmt.Errorf("%q at offset %d: expected variable name", src, target.pos)
		}
		op := p.next()
		if op.kind != tokOp {
			return nil, fmt.Errorf("%q at offset %d: expected assignment", src, op.pos)
		}
		stmt := statement{target: target.text, op: op.text}
		switch op.text {
		case "=":
			if stmt.value, err = p.parseOr(); err != nil {
				return nil, err
			}
		case "+=", "-=":
			if stmt.value, err = p.parseSum(); err != nil {
				return nil, err
			}
		case "++", "--":
		default:
			return nil, fmt.Errorf("%q at offset %d: unexpected %q", src, op.pos, op.text)
		}
		if t := p.peek(); t.kind != tokEOF && !(t.kind == tokOp && t.text == ";") {
			return nil, p.errorf("expected ';'")
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// apply runs the statements against a copy of data. On error data is left untouched.
func (a compiledAction) apply(data DataSpace) (DataSpace, error) {
	next := data.Clone()
	for _, st := range a {
		var val string
		var err error
		switch st.op {
		case "=":
			val, err = st.value.eval(next)
		case "+=", "-=", "++", "--":
			current, ok := next[st.target]
			if !ok {
				return nil, &domain.UnknownVariableError{Name: st.target}
			}
			if _, perr := strconv.ParseFloat(current, 64); perr != nil && st.value == nil {
				return nil, fmt.Errorf("'%s%s': value %q is not a number", st.target, st.op, current)
			}
			operand := "1"
			if st.value != nil {
				if operand, err = st.value.eval(next); err != nil {
					return nil, err
				}
			}
			val, err = arithmetic(st.op[:1], current, operand)
		}
		if err != nil {
			return nil, err
		}
		next[st.target] = val
	}
	return next, nil
}
