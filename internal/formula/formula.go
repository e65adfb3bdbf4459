// Package formula compiles caller-supplied arithmetic expressions into a
// closed-grammar evaluator. The grammar admits numbers, the bound variable
// names, basic arithmetic operators and a fixed set of elementary functions;
// nothing else is reachable, which keeps user formulas free of incidental
// capability.
package formula

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Program is a compiled expression. Eval is safe for concurrent use.
type Program struct {
	root     node
	varNames []string
}

// Compile parses src against the allowed variable names. Any identifier that
// is not a bound variable, a known constant or a known function is rejected
// at compile time.
func Compile(src string, vars []string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, validation.Errorf("formula is empty")
	}
	varIndex := make(map[string]int, len(vars))
	for i, name := range vars {
		varIndex[name] = i
	}

	p := &parser{tokens: nil, varIndex: varIndex}
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p.tokens = tokens

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, validation.Errorf("unexpected token '%s' in formula", p.peek().text)
	}
	return &Program{root: root, varNames: vars}, nil
}

// Vars returns the variable names the program was compiled against, in
// binding order.
func (p *Program) Vars() []string { return p.varNames }

// Eval computes the expression for one draw. values must be index-aligned
// with the compile-time variable list. Domain errors surface as NaN/Inf,
// which callers classify as invalid draws.
func (p *Program) Eval(values []float64) float64 {
	return p.root.eval(values)
}

// ---- AST ----

type node interface {
	eval(vars []float64) float64
}

type numNode float64

func (n numNode) eval([]float64) float64 { return float64(n) }

type varNode int

func (n varNode) eval(vars []float64) float64 { return vars[n] }

type unaryNode struct {
	neg   bool
	child node
}

func (n unaryNode) eval(vars []float64) float64 {
	v := n.child.eval(vars)
	if n.neg {
		return -v
	}
	return v
}

type binaryNode struct {
	op          byte // '+', '-', '*', '/', '%', '^'
	left, right node
}

func (n binaryNode) eval(vars []float64) float64 {
	l := n.left.eval(vars)
	r := n.right.eval(vars)
	switch n.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '%':
		return math.Mod(l, r)
	default:
		return math.Pow(l, r)
	}
}

type callNode struct {
	fn   func(...float64) float64
	args []node
}

func (n callNode) eval(vars []float64) float64 {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		args[i] = a.eval(vars)
	}
	return n.fn(args...)
}

// ---- closed function and constant sets ----

type builtin struct {
	arity int
	fn    func(...float64) float64
}

func unaryFn(f func(float64) float64) builtin {
	return builtin{arity: 1, fn: func(args ...float64) float64 { return f(args[0]) }}
}

func binaryFn(f func(float64, float64) float64) builtin {
	return builtin{arity: 2, fn: func(args ...float64) float64 { return f(args[0], args[1]) }}
}

var builtins = map[string]builtin{
	"abs":   unaryFn(math.Abs),
	"sqrt":  unaryFn(math.Sqrt),
	"exp":   unaryFn(math.Exp),
	"log":   unaryFn(math.Log),
	"ln":    unaryFn(math.Log),
	"log10": unaryFn(math.Log10),
	"log2":  unaryFn(math.Log2),
	"sin":   unaryFn(math.Sin),
	"cos":   unaryFn(math.Cos),
	"tan":   unaryFn(math.Tan),
	"asin":  unaryFn(math.Asin),
	"acos":  unaryFn(math.Acos),
	"atan":  unaryFn(math.Atan),
	"sinh":  unaryFn(math.Sinh),
	"cosh":  unaryFn(math.Cosh),
	"tanh":  unaryFn(math.Tanh),
	"floor": unaryFn(math.Floor),
	"ceil":  unaryFn(math.Ceil),
	"round": unaryFn(math.Round),
	"pow":   binaryFn(math.Pow),
	"min":   binaryFn(math.Min),
	"max":   binaryFn(math.Max),
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// ---- lexer ----

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func lex(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.') {
				i++
			}
			// Scientific notation.
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
					i = j
					for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
						i++
					}
				}
			}
			text := string(runes[start:i])
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, validation.Errorf("invalid number '%s' in formula", text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: num})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i])})
		case c == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				tokens = append(tokens, token{kind: tokOp, text: "**"})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokOp, text: "*"})
				i++
			}
		case c == '+' || c == '-' || c == '/' || c == '%' || c == '^':
			tokens = append(tokens, token{kind: tokOp, text: string(c)})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ","})
			i++
		default:
			return nil, validation.Errorf("unexpected character '%c' in formula", c)
		}
	}
	return tokens, nil
}

// ---- parser (precedence climbing) ----

type parser struct {
	tokens   []token
	pos      int
	varIndex map[string]int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.tokens) }
func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) matchOp(ops ...string) (string, bool) {
	if p.atEnd() || p.peek().kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.peek().text == op {
			p.advance()
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if op, ok := p.matchOp("-", "+"); ok {
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{neg: op == "-", child: child}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.matchOp("**", "^"); ok {
		// Right-associative; exponent may carry a unary sign.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	if p.atEnd() {
		return nil, validation.Errorf("formula ends unexpectedly")
	}
	t := p.advance()
	switch t.kind {
	case tokNumber:
		return numNode(t.num), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		if !p.atEnd() && p.peek().kind == tokLParen {
			return p.parseCall(t.text)
		}
		if idx, ok := p.varIndex[t.text]; ok {
			return varNode(idx), nil
		}
		if c, ok := constants[t.text]; ok {
			return numNode(c), nil
		}
		return nil, validation.Errorf("unknown variable '%s' in formula", t.text)
	default:
		return nil, validation.Errorf("unexpected token '%s' in formula", t.text)
	}
}

func (p *parser) parseCall(name string) (node, error) {
	fn, ok := builtins[name]
	if !ok {
		return nil, validation.Errorf("unknown function '%s' in formula", name)
	}
	p.advance() // consume '('

	var args []node
	if !p.atEnd() && p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.atEnd() || p.peek().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	if len(args) != fn.arity {
		return nil, validation.Errorf("function '%s' expects %d argument(s), got %d", name, fn.arity, len(args))
	}
	return callNode{fn: fn.fn, args: args}, nil
}

func (p *parser) expect(kind tokenKind, text string) error {
	if p.atEnd() || p.peek().kind != kind {
		return validation.Errorf("expected '%s' in formula", text)
	}
	p.advance()
	return nil
}
