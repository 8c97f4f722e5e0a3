// Package parser implements a recursive-descent parser with explicit
// precedence climbing, producing an *ast.Program plus a list of
// diagnostics. It pulls tokens from internal/scanner one at a time and
// keeps a single token of lookahead.
package parser

import (
	"fmt"
	"strings"

	"github.com/sam-decook/loxi/internal/ast"
	"github.com/sam-decook/loxi/internal/scanner"
	"github.com/sam-decook/loxi/internal/token"
)

const maxArgs = 255

// Diagnostic is a single parse-time (grammar or lexical) error.
type Diagnostic struct {
	File    string
	Token   token.Token
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: parse error: %s", d.File, d.Token.Line, d.Token.Col, d.Message)
}

// loopFnContext is threaded through statement parsing so break/continue/
// return can be rejected outside their enclosing construct, without a
// separate resolver pass.
type loopFnContext struct {
	isLoop     bool
	isFunction bool
}

// Parser turns a token stream into an AST. Construct with New.
type Parser struct {
	src  []byte
	file string
	sc   *scanner.Scanner

	current  token.Token
	previous token.Token

	ctx loopFnContext

	diags   []Diagnostic
	errored bool
}

// New creates a parser over src, identified as file in diagnostics.
func New(file string, src []byte) *Parser {
	p := &Parser{src: src, file: file, sc: scanner.New(src)}
	p.current = p.sc.Advance()
	return p
}

// abort unwinds the current declaration via panic/recover, the parser's
// "stop at the first error, no panic-mode recovery" discipline realized as
// in-process control flow rather than the teacher's os.Exit.
type abort struct{}

// Parse runs the full program grammar. If any diagnostics were produced,
// the returned *ast.Program may be incomplete and must not be evaluated.
func (p *Parser) Parse() (*ast.Program, []Diagnostic) {
	prog := &ast.Program{}
	for !p.errored && !p.atEnd() {
		decl, ok := p.parseDeclaration()
		if !ok {
			break
		}
		prog.Decls = append(prog.Decls, decl)
	}
	return prog, p.diags
}

func (p *Parser) parseDeclaration() (stmt ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isAbort := r.(abort); isAbort {
				ok = false
				return
			}
			panic(r)
		}
	}()
	return p.declaration(), true
}

func (p *Parser) declaration() ast.Stmt {
	switch {
	case p.match(token.Fun):
		return p.funDecl()
	case p.match(token.Var):
		return p.varDecl()
	default:
		return p.statement()
	}
}

func (p *Parser) funDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect function name")
	p.consume(token.LeftParen, "Expect '(' after function name")

	var params []ast.Param
	seen := map[string]bool{}
	if !p.check(token.RightParen) {
		params = append(params, p.param(seen))
		for p.match(token.Comma) {
			if len(params) >= maxArgs {
				p.fail(p.current, fmt.Sprintf("Can't have more than %d parameters", maxArgs))
			}
			params = append(params, p.param(seen))
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters")

	p.consume(token.LeftBrace, "Expect '{' before function body")
	outer := p.ctx
	p.ctx = loopFnContext{isLoop: false, isFunction: true}
	body := p.block().(*ast.Block)
	p.ctx = outer

	return &ast.FunDecl{NameTok: name, Name: p.text(name), Params: params, Body: body}
}

func (p *Parser) param(seen map[string]bool) ast.Param {
	tok := p.consume(token.Identifier, "Expect parameter name")
	name := p.text(tok)
	if seen[name] {
		p.fail(tok, "Duplicated parameter name")
	}
	seen[name] = true
	return ast.Param{Tok: tok, Name: name}
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.consume(token.Identifier, "Expect variable name")

	var init ast.Expr
	if p.match(token.Equal) {
		init = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration")

	return &ast.VarDecl{NameTok: name, Name: p.text(name), Initializer: init}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(token.For):
		return p.forStmt()
	case p.match(token.If):
		return p.ifStmt()
	case p.match(token.Print):
		return p.printStmt()
	case p.match(token.While):
		return p.whileStmt()
	case p.match(token.Break):
		return p.breakStmt()
	case p.match(token.Continue):
		return p.continueStmt()
	case p.match(token.Return):
		return p.returnStmt()
	case p.match(token.LeftBrace):
		return p.block()
	default:
		return p.exprStmt()
	}
}

func (p *Parser) exprStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression")
	return &ast.ExprStmt{Expr: expr}
}

func (p *Parser) printStmt() ast.Stmt {
	expr := p.expression()
	p.consume(token.Semicolon, "Expect ';' after value")
	return &ast.Print{Expr: expr}
}

func (p *Parser) breakStmt() ast.Stmt {
	kw := p.previous
	if !p.ctx.isLoop {
		p.fail(kw, "break must be inside a loop")
	}
	p.consume(token.Semicolon, "Expect ';' after 'break'")
	return &ast.Break{Keyword: kw}
}

func (p *Parser) continueStmt() ast.Stmt {
	kw := p.previous
	if !p.ctx.isLoop {
		p.fail(kw, "continue must be inside a loop")
	}
	p.consume(token.Semicolon, "Expect ';' after 'continue'")
	return &ast.Continue{Keyword: kw}
}

func (p *Parser) returnStmt() ast.Stmt {
	kw := p.previous
	if !p.ctx.isFunction {
		p.fail(kw, "return must be inside a function")
	}

	var value ast.Expr
	if !p.check(token.Semicolon) {
		value = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after return value")
	return &ast.Return{Keyword: kw, Value: value}
}

func (p *Parser) ifStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'if'")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after if condition")
	then := p.statement()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.statement()
	}
	return &ast.If{Cond: cond, Then: then, Else: els}
}

func (p *Parser) whileStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'while'")
	cond := p.expression()
	p.consume(token.RightParen, "Expect ')' after while condition")

	outer := p.ctx.isLoop
	p.ctx.isLoop = true
	body := p.statement()
	p.ctx.isLoop = outer

	// `while` desugars into a For with no init/incr clause.
	return &ast.For{Init: nil, Cond: cond, Incr: nil, Body: body}
}

func (p *Parser) forStmt() ast.Stmt {
	p.consume(token.LeftParen, "Expect '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
		init = nil
	case p.match(token.Var):
		init = p.varDecl()
	default:
		init = p.exprStmt()
	}

	var cond ast.Expr
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.consume(token.Semicolon, "Expect ';' after loop condition")

	var incr ast.Expr
	if !p.check(token.RightParen) {
		incr = p.expression()
	}
	p.consume(token.RightParen, "Expect ')' after for clauses")

	outer := p.ctx.isLoop
	p.ctx.isLoop = true
	body := p.statement()
	p.ctx.isLoop = outer

	// A `for` always desugars into a Block containing a single For node
	// whose Init mirrors the source's initializer clause (nil if absent);
	// the Block gives the initializer's variable its own scope.
	forNode := &ast.For{Init: init, Cond: cond, Incr: incr, Body: body}
	return &ast.Block{Decls: []ast.Stmt{forNode}}
}

func (p *Parser) block() ast.Stmt {
	var decls []ast.Stmt
	for !p.check(token.RightBrace) && !p.atEnd() {
		decls = append(decls, p.declaration())
	}
	p.consume(token.RightBrace, "Expect '}' after block")
	return &ast.Block{Decls: decls}
}

// ---------------- Expressions ----------------

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	expr := p.logicOr()

	if p.match(token.Equal) {
		equals := p.previous
		value := p.assignment()

		ident, ok := expr.(*ast.Identifier)
		if !ok {
			p.fail(equals, "Cannot assign value. Left side must be a variable")
			return expr
		}
		return &ast.Assignment{Target: ident, Value: value}
	}

	return expr
}

// logicOr and logicAnd are right-associative per spec.md, unlike the
// teacher's left-folding loop: each recurses into itself on the right.
func (p *Parser) logicOr() ast.Expr {
	expr := p.logicAnd()
	if p.match(token.Or) {
		right := p.logicOr()
		return &ast.LogicOr{Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) logicAnd() ast.Expr {
	expr := p.equality()
	if p.match(token.And) {
		right := p.logicAnd()
		return &ast.LogicAnd{Left: expr, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.EqualEqual, token.BangEqual) {
		op := p.previous
		right := p.comparison()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.Less, token.LessEqual, token.Greater, token.GreaterEqual) {
		op := p.previous
		right := p.term()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.Plus, token.Minus) {
		op := p.previous
		right := p.factor()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.Star, token.Slash) {
		op := p.previous
		right := p.unary()
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(token.Bang, token.Minus) {
		op := p.previous
		right := p.unary()
		return &ast.Unary{Op: op, Right: right}
	}
	return p.call()
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for p.match(token.LeftParen) {
		expr = p.finishCall(expr)
	}
	return expr
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	loc := p.previous
	var args []ast.Expr
	if !p.check(token.RightParen) {
		args = append(args, p.expression())
		for p.match(token.Comma) {
			if len(args) >= maxArgs {
				p.fail(p.current, fmt.Sprintf("Can't have more than %d arguments", maxArgs))
			}
			args = append(args, p.expression())
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments")
	return &ast.Call{Loc: loc, Callee: callee, Args: args}
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(token.True):
		return &ast.Literal{Tok: p.previous}
	case p.match(token.False):
		return &ast.Literal{Tok: p.previous}
	case p.match(token.Nil):
		return &ast.Literal{Tok: p.previous}
	case p.match(token.Number):
		tok := p.previous
		return &ast.Literal{Tok: tok, Text: p.text(tok)}
	case p.match(token.String):
		tok := p.previous
		return &ast.Literal{Tok: tok, Text: strings.Trim(p.text(tok), "\"")}
	case p.match(token.LeftParen):
		inner := p.expression()
		p.consume(token.RightParen, "Expect ')' after expression")
		return &ast.Grouping{Inner: inner}
	case p.match(token.Identifier):
		tok := p.previous
		return &ast.Identifier{Tok: tok, Name: p.text(tok)}
	default:
		if p.current.Kind == token.Error {
			p.fail(p.current, lexicalMessage(p.current))
		}
		p.fail(p.current, "Expected an expression")
		return &ast.Literal{Tok: token.Token{Kind: token.Nil}}
	}
}

// ---------------- Helpers ----------------

// text materializes a token's lexeme by slicing the source buffer.
func (p *Parser) text(t token.Token) string {
	return t.Lexeme(p.src)
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(k token.Kind) bool {
	return !p.atEnd() && p.current.Kind == k
}

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.previous = p.current
		p.current = p.sc.Advance()
	}
	return p.previous
}

func (p *Parser) consume(k token.Kind, msg string) token.Token {
	if p.current.Kind == token.Error {
		p.fail(p.current, lexicalMessage(p.current))
	}
	if !p.check(k) {
		p.fail(p.current, msg)
	}
	p.advance()
	return p.previous
}

func (p *Parser) atEnd() bool {
	return p.current.Kind == token.EOF
}

func (p *Parser) fail(tok token.Token, msg string) {
	p.diags = append(p.diags, Diagnostic{File: p.file, Token: tok, Message: msg})
	p.errored = true
	panic(abort{})
}

func lexicalMessage(t token.Token) string {
	switch t.ErrorKind {
	case token.InvalidSingleLineString:
		return "Unterminated string"
	case token.NumberMissingDecimal:
		return "Expect digit after '.' in number literal"
	default:
		return "Unexpected character"
	}
}
