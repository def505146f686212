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
	"strings"

	"github.com/ucbrise/confluo-sub001/errs"
)

// aggExpr is a parsed AGGREGATOR(field) aggregation expression, e.g.
// "SUM(amount)" or "COUNT(*)".
type aggExpr struct {
	aggregator string
	field      string // "" for a bare count
}

// parseAggExpr parses src into its aggregator name and field, the
// grammar AddAggregate's expression argument follows.
func parseAggExpr(src string) (aggExpr, error) {
	src = strings.TrimSpace(src)
	open := strings.IndexByte(src, '(')
	if open < 0 || !strings.HasSuffix(src, ")") {
		return aggExpr{}, errs.New(errs.ParseError, "malformed aggregate expression %q: expected AGG(field)", src)
	}
	agg := strings.TrimSpace(src[:open])
	field := strings.TrimSpace(src[open+1 : len(src)-1])
	if agg == "" {
		return aggExpr{}, errs.New(errs.ParseError, "malformed aggregate expression %q: missing aggregator name", src)
	}
	if field == "*" {
		field = ""
	}
	return aggExpr{aggregator: agg, field: field}, nil
}

// isCount reports whether e has no field reference (a bare COUNT(*)).
func (e aggExpr) isCount() bool { return e.field == "" }
