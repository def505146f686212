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

// Package exprparse parses filter expressions into an exprast.Node
// tree:
//
//	expr   := term ("||" term)*
//	term   := factor ("&&" factor)*
//	factor := predicate | "!" factor | "(" expr ")"
//	predicate := ident relop value
//	relop  := "==" | "!=" | "<" | "<=" | ">" | ">="
//	value  := bareword | '"' quoted '"'
//
// The grammar and recursive-descent shape follow
// parser/expression_parser.h; the hand-rolled lexer/parser split
// (rather than a generated one) follows the style of Sneller's own
// expr/partiql package, minus the yacc-generated table since this
// grammar is small enough to walk by hand.
package exprparse
