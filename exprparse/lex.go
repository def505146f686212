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
	"strings"

	"github.com/ucbrise/confluo-sub001/errs"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokValue // bareword or quoted string literal
	tokAnd   // &&
	tokOr    // ||
	tokNot   // !
	tokLParen
	tokRParen
	tokRelOp // ==, !=, <, <=, >, >=
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scanner tokenizes a filter expression. It has no lookahead buffer
// beyond the single token scan produces at a time; the parser drives
// it by repeated calls to next.
type scanner struct {
	src string
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t' || s.src[s.pos] == '\n' || s.src[s.pos] == '\r') {
		s.pos++
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isValueChar(c byte) bool {
	return isIdentCont(c) || c == '+' || c == '-' || c == '.'
}

// next scans and returns the next token, consuming it. identAsValue
// controls whether a bareword should be classified as tokIdent (the
// left-hand side of a predicate) or tokValue (its right-hand side);
// the grammar is unambiguous about which position it's in, so the
// parser tells the lexer what it expects.
func (s *scanner) next(identAsValue bool) (token, error) {
	s.skipSpace()
	start := s.pos
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	c := s.src[s.pos]
	switch {
	case c == '(':
		s.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		s.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '!':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '=' {
			s.pos += 2
			return token{kind: tokRelOp, text: "!=", pos: start}, nil
		}
		s.pos++
		return token{kind: tokNot, text: "!", pos: start}, nil
	case c == '&' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '&':
		s.pos += 2
		return token{kind: tokAnd, text: "&&", pos: start}, nil
	case c == '|' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '|':
		s.pos += 2
		return token{kind: tokOr, text: "||", pos: start}, nil
	case c == '=' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '=':
		s.pos += 2
		return token{kind: tokRelOp, text: "==", pos: start}, nil
	case c == '<':
		s.pos++
		if s.pos < len(s.src) && s.src[s.pos] == '=' {
			s.pos++
			return token{kind: tokRelOp, text: "<=", pos: start}, nil
		}
		return token{kind: tokRelOp, text: "<", pos: start}, nil
	case c == '>':
		s.pos++
		if s.pos < len(s.src) && s.src[s.pos] == '=' {
			s.pos++
			return token{kind: tokRelOp, text: ">=", pos: start}, nil
		}
		return token{kind: tokRelOp, text: ">", pos: start}, nil
	case c == '"':
		s.pos++
		var sb strings.Builder
		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			sb.WriteByte(s.src[s.pos])
			s.pos++
		}
		if s.pos >= len(s.src) {
			return token{}, errs.New(errs.ParseError, "unterminated quoted value starting at %d", start)
		}
		s.pos++ // closing quote
		return token{kind: tokValue, text: sb.String(), pos: start}, nil
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentCont(s.src[s.pos]) {
			s.pos++
		}
		text := s.src[start:s.pos]
		if identAsValue {
			return token{kind: tokValue, text: text, pos: start}, nil
		}
		return token{kind: tokIdent, text: text, pos: start}, nil
	case isValueChar(c):
		for s.pos < len(s.src) && isValueChar(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokValue, text: s.src[start:s.pos], pos: start}, nil
	default:
		return token{}, errs.New(errs.ParseError, "unexpected character %q at %d", c, start)
	}
}
