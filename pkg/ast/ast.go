package ast

import (
	"bytes"
	"strconv"
	"strings"

	"lox/pkg/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is the closed set of statement nodes; only this package
// can add variants.
type Statement interface {
	Node
	statementNode()
}

// Expression is the closed set of expression nodes.
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// Binding records where the resolver found the declaration a reference
// points at. An unresolved binding means "look it up in the globals".
type Binding struct {
	depth    int
	resolved bool
}

// Resolve pins the reference to the frame distance hops out.
func (b *Binding) Resolve(distance int) {
	b.depth = distance
	b.resolved = true
}

// Depth reports the resolved distance, or false for a global reference.
func (b *Binding) Depth() (int, bool) {
	return b.depth, b.resolved
}

// Resolvable is implemented by every node that carries a Binding.
type Resolvable interface {
	Expression
	Resolve(distance int)
	Depth() (int, bool)
}

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ""
}

type PrintStatement struct {
	Token      token.Token // 'print'
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string {
	return "print " + ps.Expression.String() + ";"
}

type VarStatement struct {
	Token       token.Token // 'var'
	Name        token.Token
	Initializer Expression // nil when absent
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString("var " + vs.Name.Lexeme)
	if vs.Initializer != nil {
		out.WriteString(" = ")
		out.WriteString(vs.Initializer.String())
	}
	out.WriteString(";")
	return out.String()
}

type BlockStatement struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{")
	for _, s := range bs.Statements {
		out.WriteString(" " + s.String())
	}
	out.WriteString(" }")
	return out.String()
}

type IfStatement struct {
	Token       token.Token // 'if'
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil when there is no else branch
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Token     token.Token // 'while', or 'for' when desugared
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type FunctionStatement struct {
	Token      token.Token // 'fun', or the method name inside a class body
	Name       token.Token
	Parameters []token.Token
	Body       []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer
	out.WriteString("fun ")
	out.WriteString(fs.signature())
	out.WriteString(" {")
	for _, s := range fs.Body {
		out.WriteString(" " + s.String())
	}
	out.WriteString(" }")
	return out.String()
}

func (fs *FunctionStatement) signature() string {
	params := make([]string, 0, len(fs.Parameters))
	for _, p := range fs.Parameters {
		params = append(params, p.Lexeme)
	}
	return fs.Name.Lexeme + "(" + strings.Join(params, ", ") + ")"
}

type ReturnStatement struct {
	Token       token.Token // the 'return' token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String() + ";"
	}
	return "return;"
}

type ClassStatement struct {
	Token      token.Token // 'class'
	Name       token.Token
	Superclass *Variable // nil when the class has no superclass
	Methods    []*FunctionStatement
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ClassStatement) String() string {
	var out bytes.Buffer
	out.WriteString("class ")
	out.WriteString(cs.Name.Lexeme)
	if cs.Superclass != nil {
		out.WriteString(" < ")
		out.WriteString(cs.Superclass.String())
	}
	out.WriteString(" {")
	for _, m := range cs.Methods {
		out.WriteString(" " + m.signature() + " {")
		for _, s := range m.Body {
			out.WriteString(" " + s.String())
		}
		out.WriteString(" }")
	}
	out.WriteString(" }")
	return out.String()
}

// Expressions

type Literal struct {
	Token token.Token
	Value any // nil, bool, float64 or string
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return l.Token.Lexeme
	}
}

type Grouping struct {
	Token      token.Token // '('
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) String() string       { return "(group " + g.Expression.String() + ")" }

type Unary struct {
	Token    token.Token // The prefix token, e.g. ! or -
	Operator string
	Right    Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Token.Lexeme }
func (u *Unary) String() string {
	return "(" + u.Operator + u.Right.String() + ")"
}

type Binary struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Token.Lexeme }
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// Logical is kept apart from Binary because its right operand is evaluated
// only when needed.
type Logical struct {
	Token    token.Token // 'and' or 'or'
	Left     Expression
	Operator string
	Right    Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Token.Lexeme }
func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}

type Variable struct {
	Binding
	Name token.Token
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Name.Lexeme }
func (v *Variable) String() string       { return v.Name.Lexeme }

type Assign struct {
	Binding
	Name  token.Token
	Value Expression
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Name.Lexeme }
func (a *Assign) String() string {
	return "(" + a.Name.Lexeme + " = " + a.Value.String() + ")"
}

type Call struct {
	Token     token.Token // The ')' token, used to report call errors
	Callee    Expression
	Arguments []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Token.Lexeme }
func (c *Call) String() string {
	args := make([]string, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		args = append(args, a.String())
	}
	return c.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

type Get struct {
	Object Expression
	Name   token.Token
}

func (g *Get) expressionNode()      {}
func (g *Get) TokenLiteral() string { return g.Name.Lexeme }
func (g *Get) String() string       { return g.Object.String() + "." + g.Name.Lexeme }

type Set struct {
	Object Expression
	Name   token.Token
	Value  Expression
}

func (s *Set) expressionNode()      {}
func (s *Set) TokenLiteral() string { return s.Name.Lexeme }
func (s *Set) String() string {
	return "(" + s.Object.String() + "." + s.Name.Lexeme + " = " + s.Value.String() + ")"
}

type This struct {
	Binding
	Keyword token.Token
}

func (t *This) expressionNode()      {}
func (t *This) TokenLiteral() string { return t.Keyword.Lexeme }
func (t *This) String() string       { return "this" }

type Super struct {
	Binding
	Keyword token.Token
	Method  token.Token
}

func (s *Super) expressionNode()      {}
func (s *Super) TokenLiteral() string { return s.Keyword.Lexeme }
func (s *Super) String() string       { return "super." + s.Method.Lexeme }
