package domain

import "testing"

func TestRankThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{0, 1},
		{100, 1},
		{149, 1},
		{150, 2},
		{499, 2},
		{500, 3},
		{999, 3},
		{1000, 4},
		{1999, 4},
		{2000, 5},
		{5000, 5},
	}
	for _, tc := range cases {
		if got := Rank(tc.score); got != tc.want {
			t.Errorf("Rank(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}
