package scoring

import "testing"

func TestSubtaskPoints(t *testing.T) {
	tests := []struct {
		d    int64
		want int
	}{
		{0, 15},
		{1200, 15},
		{1499, 15},
		{1500, 10},
		{7200, 10},
	}
	for _, tt := range tests {
		if got := SubtaskPoints(tt.d); got != tt.want {
			t.Errorf("SubtaskPoints(%d) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestXPForDuration(t *testing.T) {
	if got := XPForDuration(1499); got != 1499 {
		t.Errorf("XPForDuration(1499) = %d, want 1499", got)
	}
	if got := XPForDuration(1500); got != 1500 {
		t.Errorf("XPForDuration(1500) = %d, want 1500", got)
	}
	if got := XPForDuration(-3); got != 0 {
		t.Errorf("XPForDuration(-3) = %d, want 0", got)
	}
}

func TestTaskBonus(t *testing.T) {
	tests := []struct {
		total, done int
		want        int
	}{
		{5, 5, 20},
		{8, 8, 20},
		{5, 4, 0},
		{4, 4, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := TaskBonus(tt.total, tt.done); got != tt.want {
			t.Errorf("TaskBonus(%d, %d) = %d, want %d", tt.total, tt.done, got, tt.want)
		}
	}
}
