package services

import "testing"

func TestParseISO8601Duration(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{in: "PT4M13S", want: 253, ok: true},
		{in: "PT1H", want: 3600, ok: true},
		{in: "P1DT2H", want: 93600, ok: true},
		{in: "PT0S", want: 0, ok: true},
		{in: "pt2m", want: 120, ok: true},
		{in: " PT30S ", want: 30, ok: true},
		{in: "", want: 0, ok: false},
		{in: "4:13", want: 0, ok: false},
		{in: "P", want: 0, ok: true},
		{in: "PT", want: 0, ok: true},
		{in: "T4M", want: 0, ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseISO8601Duration(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseISO8601Duration(%q): ok want=%v got=%v", tc.in, tc.ok, ok)
		}
		if got != tc.want {
			t.Fatalf("ParseISO8601Duration(%q): want=%d got=%d", tc.in, tc.want, got)
		}
	}
}

func TestFormatWatchTime(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0s"},
		{in: 45, want: "45s"},
		{in: 60, want: "1m"},
		{in: 3599, want: "59m"},
		{in: 3600, want: "1h"},
		{in: 8100, want: "2h 15m"},
		{in: 86400, want: "1d"},
		{in: 100800, want: "1d 4h"},
		{in: -5, want: ""},
	}
	for _, tc := range cases {
		if got := FormatWatchTime(tc.in); got != tc.want {
			t.Fatalf("FormatWatchTime(%d): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}
