package report

import "testing"

func TestFormatInt(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, c := range cases {
		if got := FormatInt(c.in); got != c.want {
			t.Fatalf("FormatInt(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatAmount_Rounds(t *testing.T) {
	if got := FormatAmount(12345.6); got != "12,346" {
		t.Fatalf("FormatAmount(12345.6) = %q", got)
	}
	if got := FormatAmount(12345.4); got != "12,345" {
		t.Fatalf("FormatAmount(12345.4) = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(7.136); got != "7.14%" {
		t.Fatalf("FormatPercent(7.136) = %q", got)
	}
}

func TestFormatSignedPercent(t *testing.T) {
	if got := FormatSignedPercent(0.153); got != "+15.3%" {
		t.Fatalf("FormatSignedPercent(0.153) = %q", got)
	}
	if got := FormatSignedPercent(-0.05); got != "-5.0%" {
		t.Fatalf("FormatSignedPercent(-0.05) = %q", got)
	}
}
