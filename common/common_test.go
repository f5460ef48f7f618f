package common

import (
	"errors"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, expected float32
	}{
		{1, 0, 10, 1},
		{-1, 0, 10, 0},
		{100, 0, 10, 10},
	}
	for _, test := range tests {
		if got := Clamp(test.v, test.lo, test.hi); got != test.expected {
			t.Errorf("Clamp(%v,%v,%v) = %v, expected %v", test.v, test.lo, test.hi, got, test.expected)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#00ff00")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c != [4]float32{0, 1, 0, 1} {
		t.Errorf("ParseHexColor(#00ff00) = %v", c)
	}
	if got := FormatHexColor(c); got != "#00ff00" {
		t.Errorf("FormatHexColor = %s", got)
	}

	for _, bad := range []string{"", "00ff00", "#00ff0", "#gg0000", "#00ff0000"} {
		if _, err := ParseHexColor(bad); !errors.Is(err, ErrInvalidHexColor) {
			t.Errorf("ParseHexColor(%q) error = %v, expected ErrInvalidHexColor", bad, err)
		}
	}
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.Empty() {
		t.Fatal("EmptyBounds should be empty")
	}
	b.Extend([3]float32{-1, 0, 2})
	b.Extend([3]float32{3, 4, 2})
	if c := b.Center(); c != [3]float32{1, 2, 2} {
		t.Errorf("Center = %v", c)
	}
	if s := b.Size(); s != [3]float32{4, 4, 0} {
		t.Errorf("Size = %v", s)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "b", "c"); got != "b" {
		t.Errorf("Coalesce = %q", got)
	}
}
