package catalog

import (
	"testing"
	"time"
)

func TestCurrentSeason(t *testing.T) {
	cases := []struct {
		month time.Month
		want  string
	}{
		{time.January, "winter"},
		{time.March, "winter"},
		{time.April, "spring"},
		{time.June, "spring"},
		{time.July, "summer"},
		{time.September, "summer"},
		{time.October, "fall"},
		{time.December, "fall"},
	}
	for _, tc := range cases {
		season, year := CurrentSeason(time.Date(2026, tc.month, 15, 0, 0, 0, 0, time.UTC))
		if season != tc.want {
			t.Errorf("month %s: got %q, want %q", tc.month, season, tc.want)
		}
		if year != 2026 {
			t.Errorf("month %s: got year %d, want 2026", tc.month, year)
		}
	}
}

func TestJoinGenresDropsEmptyEntries(t *testing.T) {
	got := JoinGenres([]string{" Action ", "", "Comedy"})
	if got != "Action,Comedy" {
		t.Fatalf("JoinGenres = %q", got)
	}
}

func TestJoinSynonyms(t *testing.T) {
	got := JoinSynonyms([]string{"Shou A", "SA"})
	if got != "Shou A|SA" {
		t.Fatalf("JoinSynonyms = %q", got)
	}
}
