package script

import (
	"fmt"
	"strconv"
)

// Parse turns source into a Program. Syntax errors are returned as
// *SyntaxError.
func Parse(src string) (prog *Program, err error) {
	toks, err := tokenize(src, Pos{Line: 1, Col: 1})
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()

	prog = &Program{Source: src}
	for !p.atEOF() {
		prog.Body = append(prog.Body, p.statement())
	}
	return prog, nil
}

type parser struct {
	toks []token
	i    int
}

type bailout struct{ err *SyntaxError }

func (p *parser) fail(pos Pos, format string, args ...any) {
	panic(bailout{err: &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}})
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokenEOF {
		p.i++
	}
	return tok
}

func (p *parser) atEOF() bool { return p.peek().kind == tokenEOF }

func (p *parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.kind == tokenPunct && tok.text == text
}

func (p *parser) isKeyword(text string) bool {
	tok := p.peek()
	return tok.kind == tokenKeyword && tok.text == text
}

func (p *parser) acceptPunct(text string) bool {
	if p.isPunct(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectPunct(text string) token {
	tok := p.peek()
	if tok.kind != tokenPunct || tok.text != text {
		p.fail(tok.pos, "expected %q but found %s", text, describe(tok))
	}
	return p.next()
}

func (p *parser) expectIdent() token {
	tok := p.peek()
	if tok.kind != tokenIdent {
		p.fail(tok.pos, "expected identifier but found %s", describe(tok))
	}
	return p.next()
}

func describe(tok token) string {
	switch tok.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return strconv.Quote(tok.text)
	case tokenTemplate:
		return "template literal"
	case tokenNumber:
		return tok.text
	default:
		return fmt.Sprintf("%q", tok.text)
	}
}

func (p *parser) semicolon() {
	if p.acceptPunct(";") {
		return
	}
	tok := p.peek()
	if tok.kind == tokenEOF || tok.newline || (tok.kind == tokenPunct && tok.text == "}") {
		return
	}
	p.fail(tok.pos, "unexpected %s", describe(tok))
}

// statements

func (p *parser) statement() Stmt {
	tok := p.peek()
	switch tok.kind {
	case tokenPunct:
		switch tok.text {
		case "{":
			return p.block()
		case ";":
			p.next()
			return &Empty{base{tok.pos}}
		}
	case tokenKeyword:
		switch tok.text {
		case "let", "const", "var":
			decl := p.varDecl()
			p.semicolon()
			return decl
		case "if":
			return p.ifStatement()
		case "for":
			return p.forStatement()
		case "while":
			p.next()
			p.expectPunct("(")
			test := p.expression()
			p.expectPunct(")")
			return &While{base: base{tok.pos}, Test: test, Body: p.statement()}
		case "return":
			p.next()
			ret := &Return{base: base{tok.pos}}
			next := p.peek()
			if !(next.kind == tokenEOF || next.newline || (next.kind == tokenPunct && (next.text == ";" || next.text == "}"))) {
				ret.Value = p.expression()
			}
			p.semicolon()
			return ret
		case "throw":
			p.next()
			value := p.expression()
			p.semicolon()
			return &Throw{base: base{tok.pos}, Value: value}
		case "break":
			p.next()
			p.semicolon()
			return &Break{base{tok.pos}}
		case "continue":
			p.next()
			p.semicolon()
			return &Continue{base{tok.pos}}
		case "try":
			return p.tryStatement()
		case "function":
			p.next()
			fn := p.function(tok.pos, true)
			return &FuncDecl{base: base{tok.pos}, Func: fn}
		}
	}

	x := p.expression()
	p.semicolon()
	return &ExprStmt{base: base{tok.pos}, X: x}
}

func (p *parser) block() *Block {
	open := p.expectPunct("{")
	b := &Block{base: base{open.pos}}
	for !p.isPunct("}") {
		if p.atEOF() {
			p.fail(open.pos, "unterminated block")
		}
		b.Body = append(b.Body, p.statement())
	}
	p.next()
	return b
}

func (p *parser) varDecl() *VarDecl {
	kw := p.next()
	decl := &VarDecl{base: base{kw.pos}, Kind: kw.text}
	for {
		target := p.bindingPattern()
		var init Expr
		if p.acceptPunct("=") {
			init = p.assignment()
		} else if kw.text == "const" || target.Name == "" {
			p.fail(target.pos, "missing initializer in %s declaration", kw.text)
		}
		decl.Decls = append(decl.Decls, Declarator{Target: target, Init: init})
		if !p.acceptPunct(",") {
			return decl
		}
	}
}

func (p *parser) bindingPattern() Pattern {
	tok := p.peek()
	switch {
	case tok.kind == tokenIdent:
		p.next()
		return Pattern{Name: tok.text, pos: tok.pos}
	case tok.kind == tokenPunct && tok.text == "{":
		p.next()
		pat := Pattern{Object: []PatternProp{}, pos: tok.pos}
		for !p.acceptPunct("}") {
			if p.acceptPunct("...") {
				pat.Rest = p.expectIdent().text
				p.acceptPunct(",")
				continue
			}
			key := p.propertyName()
			prop := PatternProp{Key: key, Target: Pattern{Name: key, pos: tok.pos}}
			if p.acceptPunct(":") {
				prop.Target = p.bindingPattern()
			} else if !isIdentifierName(key) {
				p.fail(tok.pos, "invalid shorthand binding %q", key)
			}
			if p.acceptPunct("=") {
				prop.Default = p.assignment()
			}
			pat.Object = append(pat.Object, prop)
			if !p.isPunct("}") {
				p.expectPunct(",")
			}
		}
		return pat
	case tok.kind == tokenPunct && tok.text == "[":
		p.next()
		pat := Pattern{Array: []*Pattern{}, pos: tok.pos}
		for !p.acceptPunct("]") {
			if p.isPunct(",") {
				p.next()
				pat.Array = append(pat.Array, nil)
				continue
			}
			if p.acceptPunct("...") {
				pat.Rest = p.expectIdent().text
				p.acceptPunct(",")
				continue
			}
			elem := p.bindingPattern()
			pat.Array = append(pat.Array, &elem)
			if !p.isPunct("]") {
				p.expectPunct(",")
			}
		}
		return pat
	}
	p.fail(tok.pos, "expected binding name but found %s", describe(tok))
	return Pattern{}
}

func isIdentifierName(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

func (p *parser) ifStatement() Stmt {
	kw := p.next()
	p.expectPunct("(")
	test := p.expression()
	p.expectPunct(")")
	stmt := &If{base: base{kw.pos}, Test: test, Then: p.statement()}
	if p.isKeyword("else") {
		p.next()
		stmt.Else = p.statement()
	}
	return stmt
}

func (p *parser) forStatement() Stmt {
	kw := p.next()
	p.expectPunct("(")

	var init Stmt
	if tok := p.peek(); tok.kind == tokenKeyword && (tok.text == "let" || tok.text == "const" || tok.text == "var") {
		save := p.i
		p.next()
		target := p.bindingPattern()
		if next := p.peek(); (next.kind == tokenIdent && next.text == "of") || (next.kind == tokenKeyword && next.text == "in") {
			p.next()
			iter := p.expression()
			p.expectPunct(")")
			return &ForEach{
				base:   base{kw.pos},
				Kind:   tok.text,
				Target: target,
				Of:     next.text == "of",
				Iter:   iter,
				Body:   p.statement(),
			}
		}
		p.i = save
		init = p.varDecl()
	} else if !p.isPunct(";") {
		start := p.peek().pos
		init = &ExprStmt{base: base{start}, X: p.expression()}
	}
	p.expectPunct(";")

	var test Expr
	if !p.isPunct(";") {
		test = p.expression()
	}
	p.expectPunct(";")

	var update Expr
	if !p.isPunct(")") {
		update = p.expression()
	}
	p.expectPunct(")")

	return &For{base: base{kw.pos}, Init: init, Test: test, Update: update, Body: p.statement()}
}

func (p *parser) tryStatement() Stmt {
	kw := p.next()
	stmt := &Try{base: base{kw.pos}, Block: p.block()}
	if p.isKeyword("catch") {
		p.next()
		if p.acceptPunct("(") {
			param := p.bindingPattern()
			stmt.Param = &param
			p.expectPunct(")")
		}
		stmt.Catch = p.block()
	}
	if p.isKeyword("finally") {
		p.next()
		stmt.Finally = p.block()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.fail(kw.pos, "missing catch or finally after try")
	}
	return stmt
}

func (p *parser) function(pos Pos, requireName bool) *FuncLit {
	fn := &FuncLit{base: base{pos}}
	if p.peek().kind == tokenIdent {
		fn.Name = p.next().text
	} else if requireName {
		p.fail(p.peek().pos, "function statement requires a name")
	}
	fn.Params = p.params()
	fn.Body = p.block()
	return fn
}

func (p *parser) params() []Param {
	p.expectPunct("(")
	var out []Param
	for !p.acceptPunct(")") {
		param := Param{}
		if p.acceptPunct("...") {
			param.Rest = true
		}
		param.Target = p.bindingPattern()
		if !param.Rest && p.acceptPunct("=") {
			param.Default = p.assignment()
		}
		out = append(out, param)
		if !p.isPunct(")") {
			p.expectPunct(",")
		}
	}
	return out
}

// expressions

func (p *parser) expression() Expr { return p.assignment() }

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true, "**=": true, "??=": true,
}

func (p *parser) assignment() Expr {
	tok := p.peek()
	if tok.kind == tokenIdent && p.peekAt(1).kind == tokenPunct && p.peekAt(1).text == "=>" {
		p.next()
		p.next()
		return p.arrowBody(tok.pos, []Param{{Target: Pattern{Name: tok.text, pos: tok.pos}}})
	}
	if tok.kind == tokenPunct && tok.text == "(" && p.arrowAhead() {
		params := p.params()
		p.expectPunct("=>")
		return p.arrowBody(tok.pos, params)
	}

	left := p.conditional()
	if op := p.peek(); op.kind == tokenPunct && assignOps[op.text] {
		switch left.(type) {
		case *Ident, *Member:
		default:
			p.fail(op.pos, "invalid assignment target")
		}
		p.next()
		return &Assign{base: base{op.pos}, Op: op.text, Target: left, Value: p.assignment()}
	}
	return left
}

// arrowAhead reports whether the parenthesised group at the cursor is an
// arrow function parameter list.
func (p *parser) arrowAhead() bool {
	depth := 0
	for j := p.i; j < len(p.toks); j++ {
		tok := p.toks[j]
		if tok.kind == tokenEOF {
			return false
		}
		if tok.kind != tokenPunct {
			continue
		}
		switch tok.text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				next := p.toks[j+1]
				return next.kind == tokenPunct && next.text == "=>"
			}
		}
	}
	return false
}

func (p *parser) arrowBody(pos Pos, params []Param) Expr {
	fn := &FuncLit{base: base{pos}, Params: params, Arrow: true}
	if p.isPunct("{") {
		fn.Body = p.block()
	} else {
		fn.ExprBody = p.assignment()
	}
	return fn
}

func (p *parser) conditional() Expr {
	test := p.binary(1)
	if tok := p.peek(); tok.kind == tokenPunct && tok.text == "?" {
		p.next()
		then := p.assignment()
		p.expectPunct(":")
		return &Conditional{base: base{tok.pos}, Test: test, Then: then, Else: p.assignment()}
	}
	return test
}

func binaryPrecedence(tok token) int {
	if tok.kind == tokenKeyword && tok.text == "in" {
		return 5
	}
	if tok.kind != tokenPunct {
		return 0
	}
	switch tok.text {
	case "||", "??":
		return 1
	case "&&":
		return 2
	case "==", "!=", "===", "!==":
		return 4
	case "<", ">", "<=", ">=":
		return 5
	case "+", "-":
		return 6
	case "*", "/", "%":
		return 7
	case "**":
		return 8
	}
	return 0
}

func (p *parser) binary(minPrec int) Expr {
	left := p.unary()
	for {
		op := p.peek()
		prec := binaryPrecedence(op)
		if prec == 0 || prec < minPrec {
			return left
		}
		p.next()

		var right Expr
		if op.text == "**" {
			right = p.binary(prec)
		} else {
			right = p.binary(prec + 1)
		}

		switch op.text {
		case "&&", "||", "??":
			left = &Logical{base: base{op.pos}, Op: op.text, L: left, R: right}
		default:
			left = &Binary{base: base{op.pos}, Op: op.text, L: left, R: right}
		}
	}
}

func (p *parser) unary() Expr {
	tok := p.peek()
	switch {
	case tok.kind == tokenPunct && (tok.text == "!" || tok.text == "-" || tok.text == "+"):
		p.next()
		return &Unary{base: base{tok.pos}, Op: tok.text, X: p.unary()}
	case tok.kind == tokenKeyword && (tok.text == "typeof" || tok.text == "delete"):
		p.next()
		return &Unary{base: base{tok.pos}, Op: tok.text, X: p.unary()}
	case tok.kind == tokenPunct && (tok.text == "++" || tok.text == "--"):
		p.next()
		target := p.unary()
		p.checkUpdateTarget(tok.pos, target)
		return &Update{base: base{tok.pos}, Op: tok.text, Prefix: true, Target: target}
	}

	x := p.callMember()
	if tok := p.peek(); tok.kind == tokenPunct && (tok.text == "++" || tok.text == "--") && !tok.newline {
		p.next()
		p.checkUpdateTarget(tok.pos, x)
		return &Update{base: base{tok.pos}, Op: tok.text, Target: x}
	}
	return x
}

func (p *parser) checkUpdateTarget(pos Pos, target Expr) {
	switch target.(type) {
	case *Ident, *Member:
		return
	}
	p.fail(pos, "invalid increment/decrement operand")
}

func (p *parser) callMember() Expr {
	var x Expr
	if tok := p.peek(); tok.kind == tokenKeyword && tok.text == "new" {
		p.next()
		callee := p.memberOnly()
		var args []Expr
		if p.isPunct("(") {
			args = p.arguments()
		}
		x = &New{base: base{tok.pos}, Callee: callee, Args: args}
	} else {
		x = p.primary()
	}

	for {
		tok := p.peek()
		if tok.kind != tokenPunct {
			return x
		}
		switch tok.text {
		case ".":
			p.next()
			x = &Member{base: base{tok.pos}, Object: x, Name: p.memberName()}
		case "?.":
			p.next()
			switch {
			case p.isPunct("("):
				x = &CallExpr{base: base{tok.pos}, Callee: x, Args: p.arguments(), Optional: true}
			case p.isPunct("["):
				p.next()
				key := p.expression()
				p.expectPunct("]")
				x = &Member{base: base{tok.pos}, Object: x, Computed: key, Optional: true}
			default:
				x = &Member{base: base{tok.pos}, Object: x, Name: p.memberName(), Optional: true}
			}
		case "[":
			p.next()
			key := p.expression()
			p.expectPunct("]")
			x = &Member{base: base{tok.pos}, Object: x, Computed: key}
		case "(":
			x = &CallExpr{base: base{tok.pos}, Callee: x, Args: p.arguments()}
		default:
			return x
		}
	}
}

func (p *parser) memberOnly() Expr {
	x := p.primary()
	for {
		tok := p.peek()
		switch {
		case tok.kind == tokenPunct && tok.text == ".":
			p.next()
			x = &Member{base: base{tok.pos}, Object: x, Name: p.memberName()}
		case tok.kind == tokenPunct && tok.text == "[":
			p.next()
			key := p.expression()
			p.expectPunct("]")
			x = &Member{base: base{tok.pos}, Object: x, Computed: key}
		default:
			return x
		}
	}
}

func (p *parser) memberName() string {
	tok := p.peek()
	if tok.kind == tokenIdent || tok.kind == tokenKeyword {
		p.next()
		return tok.text
	}
	p.fail(tok.pos, "expected property name but found %s", describe(tok))
	return ""
}

func (p *parser) arguments() []Expr {
	p.expectPunct("(")
	var args []Expr
	for !p.acceptPunct(")") {
		if tok := p.peek(); tok.kind == tokenPunct && tok.text == "..." {
			p.next()
			args = append(args, &Spread{base: base{tok.pos}, Arg: p.assignment()})
		} else {
			args = append(args, p.assignment())
		}
		if !p.isPunct(")") {
			p.expectPunct(",")
		}
	}
	return args
}

func (p *parser) propertyName() string {
	tok := p.next()
	switch tok.kind {
	case tokenIdent, tokenKeyword, tokenString:
		return tok.text
	case tokenNumber:
		return numberToString(tok.num)
	}
	p.fail(tok.pos, "unexpected %s in object literal", describe(tok))
	return ""
}

func (p *parser) primary() Expr {
	tok := p.peek()
	switch tok.kind {
	case tokenNumber:
		p.next()
		return &NumberLit{base: base{tok.pos}, Value: tok.num}
	case tokenString:
		p.next()
		return &StringLit{base: base{tok.pos}, Value: tok.text}
	case tokenRegExp:
		p.next()
		if _, err := NewRegExp(tok.text, tok.flags); err != nil {
			p.fail(tok.pos, "%v", err)
		}
		return &RegExpLit{base: base{tok.pos}, Pattern: tok.text, Flags: tok.flags}
	case tokenTemplate:
		p.next()
		lit := &TemplateLit{base: base{tok.pos}, Quasis: tok.quasis}
		for i, src := range tok.exprs {
			lit.Exprs = append(lit.Exprs, p.subExpression(src, tok.exprPos[i]))
		}
		return lit
	case tokenIdent:
		p.next()
		return &Ident{base: base{tok.pos}, Name: tok.text}
	case tokenKeyword:
		switch tok.text {
		case "true", "false":
			p.next()
			return &BoolLit{base: base{tok.pos}, Value: tok.text == "true"}
		case "null":
			p.next()
			return &NullLit{base{tok.pos}}
		case "undefined":
			p.next()
			return &UndefinedLit{base{tok.pos}}
		case "function":
			p.next()
			return p.function(tok.pos, false)
		}
	case tokenPunct:
		switch tok.text {
		case "(":
			p.next()
			x := p.expression()
			p.expectPunct(")")
			return x
		case "[":
			return p.arrayLiteral()
		case "{":
			return p.objectLiteral()
		}
	}
	p.fail(tok.pos, "unexpected %s", describe(tok))
	return nil
}

func (p *parser) subExpression(src string, pos Pos) Expr {
	toks, err := tokenize(src, pos)
	if err != nil {
		if se, ok := err.(*SyntaxError); ok {
			panic(bailout{err: se})
		}
		p.fail(pos, "%v", err)
	}
	sub := &parser{toks: toks}
	x := sub.expression()
	if !sub.atEOF() {
		sub.fail(sub.peek().pos, "unexpected %s in template substitution", describe(sub.peek()))
	}
	return x
}

func (p *parser) arrayLiteral() Expr {
	open := p.next()
	lit := &ArrayLit{base: base{open.pos}}
	for !p.acceptPunct("]") {
		if tok := p.peek(); tok.kind == tokenPunct && tok.text == "," {
			p.next()
			lit.Elems = append(lit.Elems, &UndefinedLit{base{tok.pos}})
			continue
		}
		if tok := p.peek(); tok.kind == tokenPunct && tok.text == "..." {
			p.next()
			lit.Elems = append(lit.Elems, &Spread{base: base{tok.pos}, Arg: p.assignment()})
		} else {
			lit.Elems = append(lit.Elems, p.assignment())
		}
		if !p.isPunct("]") {
			p.expectPunct(",")
		}
	}
	return lit
}

func (p *parser) objectLiteral() Expr {
	open := p.next()
	lit := &ObjectLit{base: base{open.pos}}
	for !p.acceptPunct("}") {
		if p.acceptPunct("...") {
			lit.Props = append(lit.Props, Property{Spread: p.assignment()})
		} else if tok := p.peek(); tok.kind == tokenPunct && tok.text == "[" {
			p.next()
			key := p.assignment()
			p.expectPunct("]")
			p.expectPunct(":")
			lit.Props = append(lit.Props, Property{Computed: key, Value: p.assignment()})
		} else {
			keyTok := p.peek()
			key := p.propertyName()
			switch {
			case p.acceptPunct(":"):
				lit.Props = append(lit.Props, Property{Key: key, Value: p.assignment()})
			case p.isPunct("("):
				fn := &FuncLit{base: base{keyTok.pos}, Name: key}
				fn.Params = p.params()
				fn.Body = p.block()
				lit.Props = append(lit.Props, Property{Key: key, Value: fn})
			default:
				if keyTok.kind != tokenIdent {
					p.fail(keyTok.pos, "expected ':' after property %q", key)
				}
				lit.Props = append(lit.Props, Property{Key: key, Value: &Ident{base: base{keyTok.pos}, Name: key}})
			}
		}
		if !p.isPunct("}") {
			p.expectPunct(",")
		}
	}
	return lit
}
