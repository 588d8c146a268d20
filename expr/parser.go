package expr

import (
	"strconv"

	"github.com/linkinparks/mfpga/mfpgaerr"
)

// maxParseDepth bounds recursive descent to match the evaluator's
// recursion guard (§4.3); it also bounds how deep a malicious or malformed
// expression string can make the parser recurse.
const maxParseDepth = 256

type parser struct {
	lex   *lexer
	peek  Token
	have  bool
	depth int
}

// Parse compiles an expression string into a Tree. Malformed input yields
// an ExprParse error; the original source's behaviour of returning a null
// tree on malformed input is replaced here with an explicit error.
func Parse(exprString string) (*Tree, error) {
	p := &parser{lex: newLexer(trimExprString(exprString))}
	tree := newTree()

	root, err := p.parseExpr(tree, 0)
	if err != nil {
		return nil, err
	}

	tok := p.next()
	if tok.Type != TokenEOF {
		return nil, mfpgaerr.Newf(mfpgaerr.ExprParse, "unexpected trailing token %q", tok.Text)
	}

	tree.root = root
	return tree, nil
}

func (p *parser) next() Token {
	if p.have {
		p.have = false
		return p.peek
	}
	return p.lex.next()
}

func (p *parser) pushback(t Token) {
	p.peek = t
	p.have = true
}

func (p *parser) parseExpr(tree *Tree, depth int) (nodeHandle, error) {
	if depth > maxParseDepth {
		return noHandle, mfpgaerr.New(mfpgaerr.ExprParse, "expression nesting exceeds maximum depth")
	}

	tok := p.next()
	switch tok.Type {
	case TokenEOF:
		return noHandle, mfpgaerr.New(mfpgaerr.ExprParse, "unexpected end of expression")

	case TokenLParen:
		inner, err := p.parseExpr(tree, depth+1)
		if err != nil {
			return noHandle, err
		}
		closing := p.next()
		if closing.Type != TokenRParen {
			return noHandle, mfpgaerr.Newf(mfpgaerr.ExprParse, "expected ')', got %q", closing.Text)
		}
		return inner, nil

	case TokenRParen:
		return noHandle, mfpgaerr.New(mfpgaerr.ExprParse, "unexpected ')'")

	case TokenNumber:
		return p.parseNumber(tree, tok.Text)

	case TokenIdent:
		return p.parseIdent(tree, tok.Text, depth)
	}

	return noHandle, mfpgaerr.Newf(mfpgaerr.ExprParse, "unexpected token %q", tok.Text)
}

func (p *parser) parseNumber(tree *Tree, text string) (nodeHandle, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return tree.alloc(node{Kind: KindConstInt, ConstInt: i}), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return noHandle, mfpgaerr.Newf(mfpgaerr.ExprParse, "malformed number %q", text)
	}
	return tree.alloc(node{Kind: KindConstFloat, ConstFloat: f}), nil
}

func (p *parser) parseIdent(tree *Tree, name string, depth int) (nodeHandle, error) {
	if fn, ok := binaryFuncByName[name]; ok {
		left, err := p.parseExpr(tree, depth+1)
		if err != nil {
			return noHandle, err
		}
		right, err := p.parseExpr(tree, depth+1)
		if err != nil {
			return noHandle, err
		}
		return tree.alloc(node{Kind: KindBinaryCall, Func: fn, Left: left, Right: right}), nil
	}

	if fn, ok := unaryFuncByName[name]; ok {
		arg, err := p.parseExpr(tree, depth+1)
		if err != nil {
			return noHandle, err
		}
		return tree.alloc(node{Kind: KindUnaryCall, Func: fn, Left: arg}), nil
	}

	if !isValidIdent(name) {
		return noHandle, mfpgaerr.Newf(mfpgaerr.ExprParse, "invalid identifier %q", name)
	}

	return tree.alloc(node{Kind: KindParamRef, ParamName: name}), nil
}
