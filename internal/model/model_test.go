package model

import (
	"testing"
	"time"
)

func TestCategoryColor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		category EventCategory
		want     string
	}{
		{CategoryRetreat, "#e91e63"},
		{CategoryCamp, "#2196f3"},
		{CategoryDayOff, "#4caf50"},
		{CategoryAppointment, "#ff9800"},
		{CategoryOther, "#9c27b0"},
		{EventCategory("unknown"), "#9c27b0"},
	}
	for _, tc := range cases {
		if got := CategoryColor(tc.category); got != tc.want {
			t.Errorf("CategoryColor(%q) = %q, want %q", tc.category, got, tc.want)
		}
	}
}

func TestDateOnly(t *testing.T) {
	t.Parallel()

	in := time.Date(2024, time.August, 10, 14, 30, 45, 123, time.UTC)
	got := DateOnly(in)
	want := time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	a := time.Date(2024, time.August, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.August, 13, 1, 0, 0, 0, time.UTC)

	if got := DaysBetween(a, b); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(b, a); got != -3 {
		t.Errorf("reversed DaysBetween = %d, want -3", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Errorf("same day DaysBetween = %d", got)
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	morning := time.Date(2024, time.August, 10, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.August, 10, 23, 0, 0, 0, time.UTC)
	next := time.Date(2024, time.August, 11, 0, 0, 0, 0, time.UTC)

	if !SameDay(morning, evening) {
		t.Error("same calendar day not recognized")
	}
	if SameDay(evening, next) {
		t.Error("different days reported equal")
	}
}

func TestUserPermissions(t *testing.T) {
	t.Parallel()

	admin := User{Permissions: []Permission{PermissionAdmin}}
	chef := User{Permissions: []Permission{PermissionChef, PermissionCleaning}}

	if !admin.IsAdmin() {
		t.Error("admin not recognized")
	}
	if chef.IsAdmin() {
		t.Error("chef reported as admin")
	}
	if !chef.HasPermission(PermissionCleaning) {
		t.Error("held permission not reported")
	}
	if chef.HasPermission(PermissionMaintenance) {
		t.Error("unheld permission reported")
	}
}
