package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFineAmount(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	const rate = 100

	var tests = []struct {
		name       string
		now        time.Time
		wantDays   int64
		wantAmount int64
	}{
		{
			name:       "three days late",
			now:        due.Add(3 * 24 * time.Hour),
			wantDays:   3,
			wantAmount: 300,
		},
		{
			name:       "partial day floors down",
			now:        due.Add(3*24*time.Hour + 23*time.Hour),
			wantDays:   3,
			wantAmount: 300,
		},
		{
			name:       "under a day is not fined yet",
			now:        due.Add(6 * time.Hour),
			wantDays:   0,
			wantAmount: 0,
		},
		{
			name:       "not due",
			now:        due.Add(-time.Hour),
			wantDays:   0,
			wantAmount: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			days, amount := fineAmount(due, tt.now, rate)
			require.Equal(t, tt.wantDays, days)
			require.Equal(t, tt.wantAmount, amount)
		})
	}
}

func TestFineReason(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Late by 1 day(s)", fineReason(1))
	require.Equal(t, "Late by 12 day(s)", fineReason(12))
}
