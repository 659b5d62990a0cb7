package main

import (
	"testing"
	"time"
)

func TestUntilNextHourUTC(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "before the hour",
			now:  time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC),
			hour: 6,
			want: 3 * time.Hour,
		},
		{
			name: "exactly on the hour rolls to tomorrow",
			now:  time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC),
			hour: 6,
			want: 24 * time.Hour,
		},
		{
			name: "after the hour rolls to tomorrow",
			now:  time.Date(2026, 8, 31, 7, 30, 0, 0, time.UTC),
			hour: 6,
			want: 22*time.Hour + 30*time.Minute,
		},
		{
			name: "one second before",
			now:  time.Date(2026, 8, 31, 5, 59, 59, 0, time.UTC),
			hour: 6,
			want: time.Second,
		},
		{
			name: "midnight target",
			now:  time.Date(2026, 8, 31, 23, 0, 0, 0, time.UTC),
			hour: 0,
			want: time.Hour,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := untilNextHourUTC(tc.now, tc.hour); got != tc.want {
				t.Errorf("untilNextHourUTC(%v, %d) = %v, want %v", tc.now, tc.hour, got, tc.want)
			}
		})
	}
}
