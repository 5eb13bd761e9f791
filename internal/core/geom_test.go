package core

import "testing"

func TestRectContains(t *testing.T) {
	// A 3x2 board drawn two columns per tile inside a one-cell border.
	r := NewRect(11, 6, 6, 2)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"first tile", 11, 6, true},
		{"second half of last tile", 16, 7, true},
		{"right border (exclusive)", 17, 6, false},
		{"bottom border (exclusive)", 11, 8, false},
		{"left border", 10, 6, false},
		{"top border", 12, 5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Contains(tc.x, tc.y)
			if result != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, result, tc.expected)
			}
		})
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}
}

func TestEmptyRectContainsNothing(t *testing.T) {
	r := NewRect(3, 3, 0, 0)
	if r.Contains(3, 3) {
		t.Error("expected zero-size rect to contain no points")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 9, 5},  // within range
		{-1, 0, 9, 0}, // cursor left of column 0
		{10, 0, 9, 9}, // cursor past the last column
		{0, 0, 9, 0},  // at lo
		{9, 0, 9, 9},  // at hi
	}

	for _, tc := range tests {
		result := Clamp(tc.val, tc.lo, tc.hi)
		if result != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, result, tc.expected)
		}
	}
}
