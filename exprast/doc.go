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

// Package exprast defines the abstract syntax tree that exprparse
// produces and exprc consumes: a filter expression is a boolean
// combination (And/Or/Not) of Predicate leaves, each a column
// identifier, a relational operator, and a literal value still in its
// unparsed string form (the literal isn't typed until exprc resolves
// it against a schema).
package exprast
