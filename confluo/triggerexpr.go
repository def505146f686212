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

package confluo

import (
	"github.com/ucbrise/confluo-sub001/errs"
	"github.com/ucbrise/confluo-sub001/exprast"
	"github.com/ucbrise/confluo-sub001/exprparse"
)

// parseTriggerExpr parses a trigger condition ("agg_name relop
// literal"). This grammar production is identical to the filter
// grammar's single comparison predicate, so it reuses exprparse.Parse
// directly rather than a second hand-written parser, then requires the
// result be a bare predicate (no boolean combinators: a trigger
// condition is always exactly one comparison).
func parseTriggerExpr(src string) (*exprast.Predicate, error) {
	n, err := exprparse.Parse(src)
	if err != nil {
		return nil, err
	}
	pred, ok := n.(*exprast.Predicate)
	if !ok {
		return nil, errs.New(errs.ParseError, "trigger expression %q must be a single comparison, not a combined expression", src)
	}
	return pred, nil
}
