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
	"testing"

	"github.com/ucbrise/confluo-sub001/exprast"
)

func TestParseSimplePredicate(t *testing.T) {
	n, err := Parse("a==true")
	if err != nil {
		t.Fatal(err)
	}
	p, ok := n.(*exprast.Predicate)
	if !ok {
		t.Fatalf("got %T, want *exprast.Predicate", n)
	}
	if p.Attr != "a" || p.Op != exprast.EQ || p.Value != "true" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseQuotedValue(t *testing.T) {
	n, err := Parse(`name == "hello world"`)
	if err != nil {
		t.Fatal(err)
	}
	p := n.(*exprast.Predicate)
	if p.Value != "hello world" {
		t.Fatalf("got value %q", p.Value)
	}
}

func TestParseAndOrPrecedence(t *testing.T) {
	// && binds tighter than ||, so this is (a==1 && b==2) || c==3
	n, err := Parse("a==1 && b==2 || c==3")
	if err != nil {
		t.Fatal(err)
	}
	or, ok := n.(*exprast.Or)
	if !ok {
		t.Fatalf("top node is %T, want *exprast.Or", n)
	}
	and, ok := or.Left.(*exprast.And)
	if !ok {
		t.Fatalf("left of Or is %T, want *exprast.And", or.Left)
	}
	if and.Left.(*exprast.Predicate).Attr != "a" || and.Right.(*exprast.Predicate).Attr != "b" {
		t.Fatalf("unexpected And children: %+v", and)
	}
	if or.Right.(*exprast.Predicate).Attr != "c" {
		t.Fatalf("unexpected Or right: %+v", or.Right)
	}
}

func TestParseNegationAndParens(t *testing.T) {
	n, err := Parse("!(a < 5)")
	if err != nil {
		t.Fatal(err)
	}
	not, ok := n.(*exprast.Not)
	if !ok {
		t.Fatalf("got %T, want *exprast.Not", n)
	}
	pred := not.Child.(*exprast.Predicate)
	if pred.Attr != "a" || pred.Op != exprast.LT || pred.Value != "5" {
		t.Fatalf("got %+v", pred)
	}
}

func TestParseAllRelOps(t *testing.T) {
	cases := map[string]exprast.RelOp{
		"a==1": exprast.EQ,
		"a!=1": exprast.NEQ,
		"a<1":  exprast.LT,
		"a<=1": exprast.LE,
		"a>1":  exprast.GT,
		"a>=1": exprast.GE,
	}
	for src, want := range cases {
		n, err := Parse(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if got := n.(*exprast.Predicate).Op; got != want {
			t.Fatalf("%s: got op %v, want %v", src, got, want)
		}
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := Parse("a==1 )"); err == nil {
		t.Fatal("expected parse error on unbalanced trailing paren")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected parse error on empty expression")
	}
}

func TestParseNegativeNumericValue(t *testing.T) {
	n, err := Parse("d>=-5.5")
	if err != nil {
		t.Fatal(err)
	}
	p := n.(*exprast.Predicate)
	if p.Value != "-5.5" || p.Op != exprast.GE {
		t.Fatalf("got %+v", p)
	}
}
