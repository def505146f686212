// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package exprparse

import (
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprast"
)

type parser struct {
	sc  *scanner
	tok token
}

func newParser(src string) (*parser, error) {
	p := &parser{sc: newScanner(src)}
	if err := p.advance(false); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance(identAsValue bool) error {
	t, err := p.sc.next(identAsValue)
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// Parse parses src into an exprast.Node. An empty or all-whitespace
// src is rejected; the "always true" predicate is exprast's
// responsibility to represent as a nil Node at a higher level (exprc
// treats a nil Node as the universal filter).
func Parse(src string) (exprast.Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, errs.New(errs.ParseError, "unexpected token %q at %d", p.tok.text, p.tok.pos)
	}
	return n, nil
}

func (p *parser) parseExpr() (exprast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOr {
		if err := p.advance(false); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &exprast.Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (exprast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokAnd {
		if err := p.advance(false); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &exprast.And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (exprast.Node, error) {
	switch p.tok.kind {
	case tokNot:
		if err := p.advance(false); err != nil {
			return nil, err
		}
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &exprast.Not{Child: child}, nil
	case tokLParen:
		if err := p.advance(false); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, errs.New(errs.ParseError, "expected ')' at %d", p.tok.pos)
		}
		if err := p.advance(false); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		return p.parsePredicate()
	default:
		return nil, errs.New(errs.ParseError, "unexpected token %q at %d", p.tok.text, p.tok.pos)
	}
}

func (p *parser) parsePredicate() (exprast.Node, error) {
	attr := p.tok.text
	if err := p.advance(false); err != nil {
		return nil, err
	}
	if p.tok.kind != tokRelOp {
		return nil, errs.New(errs.ParseError, "expected relational operator after %q at %d", attr, p.tok.pos)
	}
	op, err := relOpFromText(p.tok.text)
	if err != nil {
		return nil, err
	}
	if err := p.advance(true); err != nil {
		return nil, err
	}
	if p.tok.kind != tokValue {
		return nil, errs.New(errs.ParseError, "expected value after %q at %d", op, p.tok.pos)
	}
	value := p.tok.text
	if err := p.advance(false); err != nil {
		return nil, err
	}
	return &exprast.Predicate{Attr: attr, Op: op, Value: value}, nil
}

func relOpFromText(s string) (exprast.RelOp, error) {
	switch s {
	case "==":
		return exprast.EQ, nil
	case "!=":
		return exprast.NEQ, nil
	case "<":
		return exprast.LT, nil
	case "<=":
		return exprast.LE, nil
	case ">":
		return exprast.GT, nil
	case ">=":
		return exprast.GE, nil
	default:
		return 0, errs.New(errs.ParseError, "unrecognized relational operator %q", s)
	}
}
