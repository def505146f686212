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

package alertidx

import (
	"testing"

	"github.com/ucbrise/confluo-sub001/types"
)

func TestAddAlertDedupsByTriggerAndValue(t *testing.T) {
	idx := New()
	longT := types.ULongType()

	if err := idx.AddAlert(10, "t1", "avg(x)>5", longT, types.NewULong(6), 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddAlert(10, "t1", "avg(x)>5", longT, types.NewULong(6), 2); err != nil {
		t.Fatal(err)
	}
	alerts, err := idx.GetAlerts(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1 (duplicate (trigger, value) must be deduped)", len(alerts))
	}
	if alerts[0].Version != 1 {
		t.Fatalf("Version = %d, want 1 (first insert wins, later duplicate is dropped)", alerts[0].Version)
	}
}

func TestAddAlertDistinctValuesBothKept(t *testing.T) {
	idx := New()
	longT := types.ULongType()

	if err := idx.AddAlert(10, "t1", "avg(x)>5", longT, types.NewULong(6), 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddAlert(10, "t1", "avg(x)>5", longT, types.NewULong(7), 2); err != nil {
		t.Fatal(err)
	}
	alerts, err := idx.GetAlerts(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2 (distinct values must not be deduped)", len(alerts))
	}
}

func TestGetAlertsRangeIsBucketOrdered(t *testing.T) {
	idx := New()
	longT := types.ULongType()

	buckets := []uint64{30, 10, 20}
	for _, b := range buckets {
		if err := idx.AddAlert(b, "t1", "avg(x)>5", longT, types.NewULong(b), 1); err != nil {
			t.Fatal(err)
		}
	}
	alerts, err := idx.GetAlerts(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 3 {
		t.Fatalf("len(alerts) = %d, want 3", len(alerts))
	}
	want := []uint64{10, 20, 30}
	for i, w := range want {
		if alerts[i].TimeBucket != w {
			t.Fatalf("alerts[%d].TimeBucket = %d, want %d (range lookup must be bucket-ordered)", i, alerts[i].TimeBucket, w)
		}
	}
}

func TestGetAlertsExcludesOutOfRangeBuckets(t *testing.T) {
	idx := New()
	longT := types.ULongType()
	if err := idx.AddAlert(5, "t1", "avg(x)>5", longT, types.NewULong(1), 1); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddAlert(500, "t1", "avg(x)>5", longT, types.NewULong(1), 1); err != nil {
		t.Fatal(err)
	}
	alerts, err := idx.GetAlerts(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 1 || alerts[0].TimeBucket != 5 {
		t.Fatalf("GetAlerts(0,100) = %v, want only the bucket-5 alert", alerts)
	}
}
