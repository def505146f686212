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

// Package exprc compiles an exprast.Node against a schema into a
// CompiledExpression: a disjunction of minterms, each a conjunction of
// CompiledPredicates with their attribute resolved to a column index
// and their literal resolved to a typed value. Compile first pushes
// every Not down to the leaves (negating relational operators,
// De Morgan on And/Or), then expands the Not-free tree to disjunctive
// normal form, matching parser/expression_compiler.h's two-pass shape.
//
// A CompiledExpression satisfies filter.Predicate, so the output of
// Compile can be handed directly to filter.New.
package exprc
