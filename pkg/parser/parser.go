package parser

import (
	"fmt"

	"lox/pkg/ast"
	"lox/pkg/lexer"
	"lox/pkg/token"
)

const maxArguments = 255

const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	OR          // or
	AND         // and
	EQUALS      // == !=
	LESSGREATER // > >= < <=
	SUM         // + -
	PRODUCT     // * /
	PREFIX      // -X or !X
	CALL        // myFunction(X) or object.property
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGNMENT,
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
}

// Error is a syntax error reported at a token.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line, e.Token.Lexeme, e.Message)
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*Error

	// panicking is set by errors that leave the token stream in an unknown
	// place; the next declaration boundary clears it.
	panicking bool

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*Error{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseVariable)
	p.registerPrefix(token.NUMBER, p.parseLiteral)
	p.registerPrefix(token.STRING, p.parseLiteral)
	p.registerPrefix(token.TRUE, p.parseLiteral)
	p.registerPrefix(token.FALSE, p.parseLiteral)
	p.registerPrefix(token.NIL, p.parseLiteral)
	p.registerPrefix(token.BANG, p.parseUnary)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.LPAREN, p.parseGrouping)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.SUPER, p.parseSuper)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseBinary)
	p.registerInfix(token.MINUS, p.parseBinary)
	p.registerInfix(token.SLASH, p.parseBinary)
	p.registerInfix(token.ASTERISK, p.parseBinary)
	p.registerInfix(token.EQ, p.parseBinary)
	p.registerInfix(token.NOT_EQ, p.parseBinary)
	p.registerInfix(token.LT, p.parseBinary)
	p.registerInfix(token.GT, p.parseBinary)
	p.registerInfix(token.LTE, p.parseBinary)
	p.registerInfix(token.GTE, p.parseBinary)
	p.registerInfix(token.AND, p.parseLogical)
	p.registerInfix(token.OR, p.parseLogical)
	p.registerInfix(token.ASSIGN, p.parseAssign)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.DOT, p.parseGet)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseDeclaration leaves curToken on the last token of the declaration.
func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	switch p.curToken.Type {
	case token.CLASS:
		stmt = nilIfNoClass(p.parseClassStatement())
	case token.FUN:
		if p.expectPeek(token.IDENT, "Expect function name.") {
			stmt = nilIfNoFunction(p.parseFunction("function"))
		}
	case token.VAR:
		stmt = nilIfNoVar(p.parseVarStatement())
	default:
		stmt = p.parseStatement()
	}

	if p.panicking {
		p.synchronize()
		p.panicking = false
		return nil
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.FOR:
		return p.parseForStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.LBRACE:
		return &ast.BlockStatement{Token: p.curToken, Statements: p.parseBlockStatements()}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseClassStatement() *ast.ClassStatement {
	stmt := &ast.ClassStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT, "Expect class name.") {
		return nil
	}
	stmt.Name = p.curToken

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT, "Expect superclass name.") {
			return nil
		}
		stmt.Superclass = &ast.Variable{Name: p.curToken}
	}

	if !p.expectPeek(token.LBRACE, "Expect '{' before class body.") {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.IDENT) {
			p.errorAtCurrent("Expect method name.")
			return nil
		}
		method := p.parseFunction("method")
		if method == nil {
			return nil
		}
		stmt.Methods = append(stmt.Methods, method)
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.errorAtCurrent("Expect '}' after class body.")
		return nil
	}
	return stmt
}

// parseFunction expects curToken to be the function name.
func (p *Parser) parseFunction(kind string) *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken, Name: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after "+kind+" name.") {
		return nil
	}

	stmt.Parameters = []token.Token{}
	if !p.peekTokenIs(token.RPAREN) {
		for {
			if !p.expectPeek(token.IDENT, "Expect parameter name.") {
				return nil
			}
			if len(stmt.Parameters) >= maxArguments {
				p.errorAt(p.curToken, fmt.Sprintf("Can't have more than %d parameters.", maxArguments))
			}
			stmt.Parameters = append(stmt.Parameters, p.curToken)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectPeek(token.RPAREN, "Expect ')' after parameters.") {
		return nil
	}
	if !p.expectPeek(token.LBRACE, "Expect '{' before "+kind+" body.") {
		return nil
	}

	stmt.Body = p.parseBlockStatements()
	return stmt
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT, "Expect variable name.") {
		return nil
	}
	stmt.Name = p.curToken

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Initializer = p.parseExpression(LOWEST)
		if stmt.Initializer == nil {
			return nil
		}
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after variable declaration.") {
		return nil
	}
	return stmt
}

// parseBlockStatements expects curToken to be '{' and stops on the matching '}'.
func (p *Parser) parseBlockStatements() []ast.Statement {
	statements := []ast.Statement{}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			statements = append(statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.errorAtCurrent("Expect '}' after block.")
	}
	return statements
}

func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'for'.") {
		return nil
	}
	p.nextToken()

	var initializer ast.Statement
	switch p.curToken.Type {
	case token.SEMICOLON:
	case token.VAR:
		initializer = nilIfNoVar(p.parseVarStatement())
	default:
		initializer = p.parseExpressionStatement()
	}
	if p.panicking {
		return nil
	}
	p.nextToken()

	var condition ast.Expression
	if !p.curTokenIs(token.SEMICOLON) {
		condition = p.parseExpression(LOWEST)
		if condition == nil || !p.expectPeek(token.SEMICOLON, "Expect ';' after loop condition.") {
			return nil
		}
	}
	p.nextToken()

	var increment ast.Expression
	if !p.curTokenIs(token.RPAREN) {
		increment = p.parseExpression(LOWEST)
		if increment == nil || !p.expectPeek(token.RPAREN, "Expect ')' after for clauses.") {
			return nil
		}
	}
	p.nextToken()

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forToken,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forToken, Expression: increment},
			},
		}
	}
	if condition == nil {
		condition = &ast.Literal{Token: forToken, Value: true}
	}
	var loop ast.Statement = &ast.WhileStatement{Token: forToken, Condition: condition, Body: body}
	if initializer != nil {
		loop = &ast.BlockStatement{Token: forToken, Statements: []ast.Statement{initializer, loop}}
	}
	return loop
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'if'.") {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.RPAREN, "Expect ')' after if condition.") {
		return nil
	}

	p.nextToken()
	stmt.Consequence = p.parseStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}

	p.nextToken()
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil || !p.expectPeek(token.SEMICOLON, "Expect ';' after value.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.ReturnValue = p.parseExpression(LOWEST)
		if stmt.ReturnValue == nil {
			return nil
		}
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after return value.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'while'.") {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(token.RPAREN, "Expect ')' after condition.") {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil || !p.expectPeek(token.SEMICOLON, "Expect ';' after expression.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAtCurrent("Expect expression.")
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseVariable() ast.Expression {
	return &ast.Variable{Name: p.curToken}
}

func (p *Parser) parseLiteral() ast.Expression {
	lit := &ast.Literal{Token: p.curToken}
	switch p.curToken.Type {
	case token.TRUE:
		lit.Value = true
	case token.FALSE:
		lit.Value = false
	case token.NIL:
		lit.Value = nil
	default:
		lit.Value = p.curToken.Literal
	}
	return lit
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.This{Keyword: p.curToken}
}

func (p *Parser) parseSuper() ast.Expression {
	expression := &ast.Super{Keyword: p.curToken}

	if !p.expectPeek(token.DOT, "Expect '.' after 'super'.") {
		return nil
	}
	if !p.expectPeek(token.IDENT, "Expect superclass method name.") {
		return nil
	}
	expression.Method = p.curToken
	return expression
}

func (p *Parser) parseUnary() ast.Expression {
	expression := &ast.Unary{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	expression := &ast.Binary{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseLogical(left ast.Expression) ast.Expression {
	expression := &ast.Logical{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseAssign is right associative: the value is parsed one level below
// ASSIGNMENT so a chained '=' nests to the right.
func (p *Parser) parseAssign(left ast.Expression) ast.Expression {
	equals := p.curToken

	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Value: value}
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
	}

	// Reported without unwinding: the expression itself parsed fine.
	p.errorAt(equals, "Invalid assignment target.")
	return left
}

func (p *Parser) parseGrouping() ast.Expression {
	expression := &ast.Grouping{Token: p.curToken}
	p.nextToken()

	expression.Expression = p.parseExpression(LOWEST)
	if expression.Expression == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN, "Expect ')' after expression.") {
		return nil
	}

	return expression
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	exp := &ast.Call{Callee: callee, Arguments: []ast.Expression{}}

	if !p.peekTokenIs(token.RPAREN) {
		for {
			p.nextToken()
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			if len(exp.Arguments) >= maxArguments {
				p.errorAt(p.curToken, fmt.Sprintf("Can't have more than %d arguments.", maxArguments))
			}
			exp.Arguments = append(exp.Arguments, arg)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectPeek(token.RPAREN, "Expect ')' after arguments.") {
		return nil
	}
	exp.Token = p.curToken
	return exp
}

func (p *Parser) parseGet(object ast.Expression) ast.Expression {
	if !p.expectPeek(token.IDENT, "Expect property name after '.'.") {
		return nil
	}
	return &ast.Get{Object: object, Name: p.curToken}
}

// synchronize skips tokens until curToken ends a statement or peekToken
// starts one.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN, token.EOF:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType, message string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, message)
	p.panicking = true
	return false
}

func (p *Parser) Errors() []*Error {
	return p.errors
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.curToken, message)
	p.panicking = true
}

func (p *Parser) errorAt(tok token.Token, message string) {
	p.errors = append(p.errors, &Error{Token: tok, Message: message})
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// The helpers below keep a typed nil pointer from turning into a non-nil
// ast.Statement.

func nilIfNoClass(s *ast.ClassStatement) ast.Statement {
	if s == nil {
		return nil
	}
	return s
}

func nilIfNoFunction(s *ast.FunctionStatement) ast.Statement {
	if s == nil {
		return nil
	}
	return s
}

func nilIfNoVar(s *ast.VarStatement) ast.Statement {
	if s == nil {
		return nil
	}
	return s
}
