package models

import "testing"

func TestScheduledDaysPerWeek(t *testing.T) {
	cases := []struct {
		name     string
		schedule int
		want     int
	}{
		{"empty mask", 0, 0},
		{"weekdays", 0b0111110, 5},
		{"weekend", 0b1000001, 2},
		{"every day", 0b1111111, 7},
		{"single day", 0b0001000, 1},
	}
	for _, tc := range cases {
		h := Habit{Schedule: tc.schedule}
		if got := h.ScheduledDaysPerWeek(); got != tc.want {
			t.Errorf("%s: schedule %07b counted %d days, want %d", tc.name, tc.schedule, got, tc.want)
		}
	}
}

func TestWeeklyTargetExplicitWins(t *testing.T) {
	h := Habit{Schedule: 0b1111111, TargetPerWeek: 3}
	if got := h.WeeklyTarget(); got != 3 {
		t.Errorf("explicit target should win over the mask, got %d", got)
	}
}

func TestWeeklyTargetFallsBackToMask(t *testing.T) {
	h := Habit{Schedule: 0b0101010}
	if got := h.WeeklyTarget(); got != 3 {
		t.Errorf("expected mask count 3, got %d", got)
	}
}

func TestWeeklyTargetDefaultsToDaily(t *testing.T) {
	h := Habit{}
	if got := h.WeeklyTarget(); got != 7 {
		t.Errorf("expected daily default 7, got %d", got)
	}
}
