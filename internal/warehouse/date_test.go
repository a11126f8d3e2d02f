package warehouse_test

import (
	"testing"
	"time"

	"jobwarehouse/etl-service/internal/warehouse"
)

func TestDateKey(t *testing.T) {
	d := time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC)
	if got := warehouse.DateKey(d); got != 20260307 {
		t.Errorf("DateKey = %d, want 20260307", got)
	}
}

func TestQuarter(t *testing.T) {
	cases := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1},
		{time.March, 1},
		{time.April, 2},
		{time.June, 2},
		{time.July, 3},
		{time.September, 3},
		{time.October, 4},
		{time.December, 4},
	}
	for _, c := range cases {
		d := time.Date(2026, c.month, 15, 0, 0, 0, 0, time.UTC)
		if got := warehouse.Quarter(d); got != c.want {
			t.Errorf("Quarter(%s) = %d, want %d", c.month, got, c.want)
		}
	}
}

func TestISOWeekdayAndWeekend(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		if got := warehouse.ISOWeekday(d); got != i+1 {
			t.Errorf("ISOWeekday(%s) = %d, want %d", d.Weekday(), got, i+1)
		}
		wantWeekend := i >= 5
		if got := warehouse.IsWeekend(d); got != wantWeekend {
			t.Errorf("IsWeekend(%s) = %v, want %v", d.Weekday(), got, wantWeekend)
		}
	}
}

func TestJobKey_StableAndPositive(t *testing.T) {
	first := warehouse.JobKey("job-abc-123")
	second := warehouse.JobKey("job-abc-123")
	if first != second {
		t.Errorf("JobKey not deterministic: %d vs %d", first, second)
	}
	if first < 0 {
		t.Errorf("JobKey = %d, want non-negative", first)
	}
	if other := warehouse.JobKey("job-abc-124"); other == first {
		t.Errorf("JobKey collision between distinct ids: %d", other)
	}
}

func TestJoinList(t *testing.T) {
	if got := warehouse.JoinList(nil); got != nil {
		t.Errorf("JoinList(nil) = %v, want nil", *got)
	}
	got := warehouse.JoinList([]string{"Python", "Airflow"})
	if got == nil || *got != "Python,Airflow" {
		t.Errorf("JoinList = %v, want Python,Airflow", got)
	}
}
