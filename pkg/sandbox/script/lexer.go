package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pos is a 1-based source location.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenKeyword
	tokenNumber
	tokenString
	tokenTemplate
	tokenPunct
	tokenRegExp
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  Pos
	// flags of a regular expression literal; text holds the pattern.
	flags string
	// newline reports a line break between this token and the previous one.
	newline bool

	// template literals: cooked string parts and the source of each ${...}
	quasis  []string
	exprs   []string
	exprPos []Pos
}

var keywords = map[string]bool{
	"let": true, "const": true, "var": true, "if": true, "else": true,
	"return": true, "throw": true, "for": true, "in": true, "while": true,
	"break": true, "continue": true, "try": true, "catch": true,
	"finally": true, "function": true, "typeof": true, "new": true,
	"delete": true, "true": true, "false": true, "null": true,
	"undefined": true,
}

// longest first
var punctuators = []string{
	"===", "!==", "...", "**=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "**",
	"+=", "-=", "*=", "/=", "%=", "++", "--",
	"{", "}", "(", ")", "[", "]", ";", ",", ".", "?", ":",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

// SyntaxError reports a lexing or parsing failure.
type SyntaxError struct {
	Pos     Pos
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (%s)", e.Message, e.Pos)
}

type lexer struct {
	src     string
	offset  int
	line    int
	col     int
	newline bool
	prev    *token
}

func tokenize(src string, start Pos) ([]token, error) {
	lx := &lexer{src: src, line: start.Line, col: start.Col}
	var out []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokenEOF {
			return out, nil
		}
		last := tok
		lx.prev = &last
	}
}

func (lx *lexer) errorf(pos Pos, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (lx *lexer) peekByte(ahead int) byte {
	if lx.offset+ahead >= len(lx.src) {
		return 0
	}
	return lx.src[lx.offset+ahead]
}

func (lx *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.offset:])
	lx.offset += size
	if r == '\n' {
		lx.line++
		lx.col = 1
		lx.newline = true
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) pos() Pos { return Pos{Line: lx.line, Col: lx.col} }

func (lx *lexer) skipSpaceAndComments() error {
	for lx.offset < len(lx.src) {
		ch := lx.src[lx.offset]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.advance()
		case ch == '/' && lx.peekByte(1) == '/':
			for lx.offset < len(lx.src) && lx.src[lx.offset] != '\n' {
				lx.advance()
			}
		case ch == '/' && lx.peekByte(1) == '*':
			start := lx.pos()
			lx.advance()
			lx.advance()
			closed := false
			for lx.offset < len(lx.src) {
				if lx.src[lx.offset] == '*' && lx.peekByte(1) == '/' {
					lx.advance()
					lx.advance()
					closed = true
					break
				}
				lx.advance()
			}
			if !closed {
				return lx.errorf(start, "unterminated comment")
			}
		default:
			if r := lx.peekRune(); r > utf8.RuneSelf && unicode.IsSpace(r) {
				lx.advance()
				continue
			}
			return nil
		}
	}
	return nil
}

func (lx *lexer) next() (token, error) {
	lx.newline = false
	if err := lx.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	nl := lx.newline
	start := lx.pos()
	if lx.offset >= len(lx.src) {
		return token{kind: tokenEOF, pos: start, newline: nl}, nil
	}

	ch := lx.src[lx.offset]
	var (
		tok token
		err error
	)
	switch {
	case isIdentStart(lx.peekRune()):
		tok = lx.identifier()
	case isDigit(ch) || (ch == '.' && isDigit(lx.peekByte(1))):
		tok, err = lx.number()
	case ch == '"' || ch == '\'':
		tok, err = lx.stringLiteral()
	case ch == '`':
		tok, err = lx.template()
	case ch == '/' && lx.regexpAllowed():
		tok, err = lx.regexpLiteral()
	default:
		tok, err = lx.punctuator()
	}
	if err != nil {
		return token{}, err
	}
	tok.pos = start
	tok.newline = nl
	return tok, nil
}

func (lx *lexer) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(lx.src[lx.offset:])
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (lx *lexer) identifier() token {
	begin := lx.offset
	for lx.offset < len(lx.src) && isIdentPart(lx.peekRune()) {
		lx.advance()
	}
	word := lx.src[begin:lx.offset]
	if keywords[word] {
		return token{kind: tokenKeyword, text: word}
	}
	return token{kind: tokenIdent, text: word}
}

func (lx *lexer) number() (token, error) {
	start := lx.pos()
	begin := lx.offset

	if lx.src[lx.offset] == '0' && (lx.peekByte(1) == 'x' || lx.peekByte(1) == 'X') {
		lx.advance()
		lx.advance()
		digits := lx.offset
		for lx.offset < len(lx.src) && isHexDigit(lx.src[lx.offset]) {
			lx.advance()
		}
		if digits == lx.offset {
			return token{}, lx.errorf(start, "invalid hexadecimal literal")
		}
		n, err := strconv.ParseUint(lx.src[digits:lx.offset], 16, 64)
		if err != nil {
			return token{}, lx.errorf(start, "invalid hexadecimal literal")
		}
		return token{kind: tokenNumber, num: float64(n), text: lx.src[begin:lx.offset]}, nil
	}

	for lx.offset < len(lx.src) && isDigit(lx.src[lx.offset]) {
		lx.advance()
	}
	if lx.offset < len(lx.src) && lx.src[lx.offset] == '.' {
		lx.advance()
		for lx.offset < len(lx.src) && isDigit(lx.src[lx.offset]) {
			lx.advance()
		}
	}
	if lx.offset < len(lx.src) && (lx.src[lx.offset] == 'e' || lx.src[lx.offset] == 'E') {
		save, line, col := lx.offset, lx.line, lx.col
		lx.advance()
		if lx.offset < len(lx.src) && (lx.src[lx.offset] == '+' || lx.src[lx.offset] == '-') {
			lx.advance()
		}
		if lx.offset >= len(lx.src) || !isDigit(lx.src[lx.offset]) {
			lx.offset, lx.line, lx.col = save, line, col
		} else {
			for lx.offset < len(lx.src) && isDigit(lx.src[lx.offset]) {
				lx.advance()
			}
		}
	}
	if lx.offset < len(lx.src) && isIdentStart(lx.peekRune()) {
		return token{}, lx.errorf(start, "identifier starts immediately after numeric literal")
	}

	raw := lx.src[begin:lx.offset]
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return token{}, lx.errorf(start, "invalid number %q", raw)
	}
	return token{kind: tokenNumber, num: n, text: raw}, nil
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (lx *lexer) stringLiteral() (token, error) {
	start := lx.pos()
	quote := lx.advance()
	var sb strings.Builder
	for {
		if lx.offset >= len(lx.src) {
			return token{}, lx.errorf(start, "unterminated string literal")
		}
		r := lx.peekRune()
		if r == '\n' {
			return token{}, lx.errorf(start, "unterminated string literal")
		}
		lx.advance()
		if r == quote {
			return token{kind: tokenString, text: sb.String()}, nil
		}
		if r == '\\' {
			if err := lx.escape(&sb, start); err != nil {
				return token{}, err
			}
			continue
		}
		sb.WriteRune(r)
	}
}

func (lx *lexer) escape(sb *strings.Builder, start Pos) error {
	if lx.offset >= len(lx.src) {
		return lx.errorf(start, "unterminated escape sequence")
	}
	r := lx.advance()
	switch r {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case '\n':
		// line continuation
	case 'x':
		code, err := lx.hexRun(2, start)
		if err != nil {
			return err
		}
		sb.WriteRune(rune(code))
	case 'u':
		if lx.peekByte(0) == '{' {
			lx.advance()
			begin := lx.offset
			for lx.offset < len(lx.src) && lx.src[lx.offset] != '}' {
				lx.advance()
			}
			if lx.offset >= len(lx.src) {
				return lx.errorf(start, "invalid unicode escape")
			}
			code, err := strconv.ParseUint(lx.src[begin:lx.offset], 16, 32)
			lx.advance()
			if err != nil || code > unicode.MaxRune {
				return lx.errorf(start, "invalid unicode escape")
			}
			sb.WriteRune(rune(code))
			return nil
		}
		code, err := lx.hexRun(4, start)
		if err != nil {
			return err
		}
		sb.WriteRune(rune(code))
	default:
		sb.WriteRune(r)
	}
	return nil
}

func (lx *lexer) hexRun(n int, start Pos) (uint64, error) {
	if lx.offset+n > len(lx.src) {
		return 0, lx.errorf(start, "invalid escape sequence")
	}
	code, err := strconv.ParseUint(lx.src[lx.offset:lx.offset+n], 16, 32)
	if err != nil {
		return 0, lx.errorf(start, "invalid escape sequence")
	}
	for i := 0; i < n; i++ {
		lx.advance()
	}
	return code, nil
}

func (lx *lexer) template() (token, error) {
	start := lx.pos()
	lx.advance()
	tok := token{kind: tokenTemplate}
	var sb strings.Builder
	for {
		if lx.offset >= len(lx.src) {
			return token{}, lx.errorf(start, "unterminated template literal")
		}
		r := lx.peekRune()
		switch {
		case r == '`':
			lx.advance()
			tok.quasis = append(tok.quasis, sb.String())
			return tok, nil
		case r == '\\':
			lx.advance()
			if err := lx.escape(&sb, start); err != nil {
				return token{}, err
			}
		case r == '$' && lx.peekByte(1) == '{':
			lx.advance()
			lx.advance()
			tok.quasis = append(tok.quasis, sb.String())
			sb.Reset()
			exprStart := lx.pos()
			src, err := lx.templateExpr(start)
			if err != nil {
				return token{}, err
			}
			tok.exprs = append(tok.exprs, src)
			tok.exprPos = append(tok.exprPos, exprStart)
		default:
			lx.advance()
			sb.WriteRune(r)
		}
	}
}

// templateExpr scans to the brace closing a ${ substitution, skipping over
// nested braces and string literals.
func (lx *lexer) templateExpr(start Pos) (string, error) {
	begin := lx.offset
	depth := 0
	for lx.offset < len(lx.src) {
		ch := lx.src[lx.offset]
		switch ch {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				src := lx.src[begin:lx.offset]
				lx.advance()
				return src, nil
			}
			depth--
		case '"', '\'', '`':
			quote := ch
			lx.advance()
			for lx.offset < len(lx.src) && lx.src[lx.offset] != quote {
				if lx.src[lx.offset] == '\\' {
					lx.advance()
				}
				if lx.offset < len(lx.src) {
					lx.advance()
				}
			}
		}
		if lx.offset < len(lx.src) {
			lx.advance()
		}
	}
	return "", lx.errorf(start, "unterminated template substitution")
}

// regexpAllowed reports whether a '/' starts a regular expression rather
// than a division, judged from the previous token.
func (lx *lexer) regexpAllowed() bool {
	if lx.prev == nil {
		return true
	}
	switch lx.prev.kind {
	case tokenPunct:
		switch lx.prev.text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	case tokenKeyword:
		switch lx.prev.text {
		case "true", "false", "null", "undefined":
			return false
		}
		return true
	}
	return false
}

func (lx *lexer) regexpLiteral() (token, error) {
	start := lx.pos()
	lx.advance()
	var sb strings.Builder
	inClass := false
	for {
		if lx.offset >= len(lx.src) {
			return token{}, lx.errorf(start, "unterminated regular expression")
		}
		r := lx.advance()
		switch {
		case r == '\\':
			if lx.offset >= len(lx.src) {
				return token{}, lx.errorf(start, "unterminated regular expression")
			}
			sb.WriteRune(r)
			sb.WriteRune(lx.advance())
			continue
		case r == '\n':
			return token{}, lx.errorf(start, "unterminated regular expression")
		case r == '[':
			inClass = true
		case r == ']':
			inClass = false
		case r == '/' && !inClass:
			flags := lx.offset
			for lx.offset < len(lx.src) && isIdentPart(lx.peekRune()) {
				lx.advance()
			}
			return token{kind: tokenRegExp, text: sb.String(), flags: lx.src[flags:lx.offset]}, nil
		}
		sb.WriteRune(r)
	}
}

func (lx *lexer) punctuator() (token, error) {
	rest := lx.src[lx.offset:]
	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		// "a?.5:b" is a conditional, not optional chaining.
		if p == "?." && len(rest) > 2 && isDigit(rest[2]) {
			continue
		}
		for range p {
			lx.advance()
		}
		return token{kind: tokenPunct, text: p}, nil
	}
	return token{}, lx.errorf(lx.pos(), "unexpected character %q", lx.peekRune())
}
