package domain

import (
	"math"
	"testing"
)

func TestSettleTaps(t *testing.T) {
	cases := []struct {
		counter, taps       int
		wantEarned, wantNew int
	}{
		{0, 1, 0, 1},
		{99, 1, 1, 0},
		{99, 2, 1, 1},
		{50, 49, 0, 99},
		{0, 100, 1, 0},
		{0, 250, 2, 50},
		{99, 201, 3, 0},
		{0, 0, 0, 0},
	}

	for _, tc := range cases {
		earned, next := SettleTaps(tc.counter, tc.taps)
		if earned != tc.wantEarned || next != tc.wantNew {
			t.Fatalf("SettleTaps(%d, %d) = (%d, %d); want (%d, %d)",
				tc.counter, tc.taps, earned, next, tc.wantEarned, tc.wantNew)
		}
	}
}

func TestSettleTaps_CounterStaysInRange(t *testing.T) {
	counter := 0
	total := 0
	for i := 0; i < 1000; i++ {
		earned, next := SettleTaps(counter, 7)
		if next < 0 || next >= TapsPerToken {
			t.Fatalf("counter %d out of range after tap batch", next)
		}
		total += earned
		counter = next
	}
	// 7000 taps must have produced exactly 70 tokens regardless of batching.
	if total != 70 {
		t.Fatalf("earned %d tokens from 7000 taps; want 70", total)
	}
}

func TestPriceForUsers(t *testing.T) {
	cases := []struct {
		initial, increment float64
		total              int64
		want               float64
	}{
		{1.6, 0.1, 0, 1.6},
		{1.6, 0.1, 1, 1.7},
		{1.6, 0.1, 10, 2.6},
		{2.0, 0.0, 500, 2.0},
	}

	for _, tc := range cases {
		got := PriceForUsers(tc.initial, tc.increment, tc.total)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("PriceForUsers(%v, %v, %d) = %v; want %v",
				tc.initial, tc.increment, tc.total, got, tc.want)
		}
	}
}
