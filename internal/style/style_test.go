package style

import (
	"image/color"
	"strings"
	"testing"
)

func TestValidateColor_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"28295d", "28295D"},
		{"#28295D", "28295D"},
		{"fff", "FFFFFF"},
		{"#abc", "AABBCC"},
		{"  7cb342 ", "7CB342"},
		{"000000", "000000"},
		{"#0F0", "00FF00"},
	}

	for _, tt := range tests {
		if got := ValidateColor(tt.in, "123456"); got != tt.want {
			t.Errorf("ValidateColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateColor_Invalid(t *testing.T) {
	var nilString *string
	inputs := []any{
		nil,
		"",
		"#",
		"zzzzzz",
		"12345",
		"1234567",
		"#12345g",
		"red",
		123456,
		3.14,
		true,
		nilString,
		[]string{"ffffff"},
	}

	for _, in := range inputs {
		if got := ValidateColor(in, "0f7c84"); got != "0F7C84" {
			t.Errorf("ValidateColor(%#v) = %q, want default 0F7C84", in, got)
		}
	}
}

func TestValidateColor_DefaultFallback(t *testing.T) {
	if got := ValidateColor("nope", ""); got != DefaultColor {
		t.Errorf("empty default should resolve to %s, got %s", DefaultColor, got)
	}
	if got := ValidateColor(nil, "also-bad"); got != DefaultColor {
		t.Errorf("invalid default should resolve to %s, got %s", DefaultColor, got)
	}
	s := "#ABC"
	if got := ValidateColor(&s, ""); got != "AABBCC" {
		t.Errorf("pointer input = %s, want AABBCC", got)
	}
}

func TestValidateColor_AlwaysCanonical(t *testing.T) {
	inputs := []any{"a1b2c3", "#A1B2C3", "abc", "#ABC", nil, "garbage", 42}
	for _, in := range inputs {
		got := ValidateColor(in, "")
		if len(got) != 6 || strings.ToUpper(got) != got || !hexPattern.MatchString(got) {
			t.Errorf("ValidateColor(%#v) = %q is not canonical 6-digit uppercase hex", in, got)
		}
	}
}

func TestRGBA(t *testing.T) {
	got := RGBA("28295D", 1)
	want := color.NRGBA{R: 0x28, G: 0x29, B: 0x5D, A: 0xFF}
	if got != want {
		t.Errorf("RGBA = %#v, want %#v", got, want)
	}

	half := RGBA("bad", 0.5).(color.NRGBA)
	if half.R != 0 || half.G != 0 || half.B != 0 || half.A != 128 {
		t.Errorf("RGBA(bad, .5) = %#v", half)
	}
}

func TestHeaderFontSize_Bands(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{0, 28},
		{10, 28},
		{30, 28},
		{31, 28},
		{35, 28},
		{36, 26},
		{45, 26},
		{46, 24},
		{60, 24},
		{61, 22},
		{80, 22},
		{81, 20},
		{90, 20},
		{500, 20},
	}

	for _, tt := range tests {
		title := strings.Repeat("x", tt.length)
		if got := HeaderFontSize(title); got != tt.want {
			t.Errorf("HeaderFontSize(len=%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestHeaderFontSize_Monotonic(t *testing.T) {
	prev := HeaderFontSize("")
	for n := 1; n <= 200; n++ {
		size := HeaderFontSize(strings.Repeat("a", n))
		if size > prev {
			t.Fatalf("HeaderFontSize increased from %d to %d at length %d", prev, size, n)
		}
		prev = size
	}
}
