package appointments

import (
	"testing"
	"time"
)

// ref is noon UTC on a fixed day so "today" is unambiguous.
var ref = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestIsUrgentPendingWindow(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"yesterday", "2026-03-09", false},
		{"today", "2026-03-10", true},
		{"tomorrow", "2026-03-11", true},
		{"two days out", "2026-03-12", true},
		{"three days out", "2026-03-13", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Appointment{Status: "pending", Date: tt.date}
			if got := IsUrgentPending(a, ref); got != tt.want {
				t.Errorf("IsUrgentPending(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsUrgentPendingStatusGate(t *testing.T) {
	a := Appointment{Status: "Pending", Date: "2026-03-10"}
	if !IsUrgentPending(a, ref) {
		t.Error("status comparison should be case-insensitive")
	}

	a.Status = "approved"
	if IsUrgentPending(a, ref) {
		t.Error("approved appointment in window must not be urgent")
	}

	a = Appointment{Status: "", Date: "2026-03-10"}
	if !IsUrgentPending(a, ref) {
		t.Error("empty status defaults to pending")
	}
}

func TestIsUrgentPendingBadDate(t *testing.T) {
	a := Appointment{Status: "pending", Date: "03/10/2026"}
	if IsUrgentPending(a, ref) {
		t.Error("non-ISO date must not classify as urgent")
	}
}

func TestParseCivilTime(t *testing.T) {
	tests := []struct {
		raw       string
		hour, min int
		wantErr   bool
	}{
		{"09:30", 9, 30, false},
		{"14:05", 14, 5, false},
		{"00:00", 0, 0, false},
		{"24:15", 0, 15, false},
		{"12:00 AM", 0, 0, false},
		{"12:30 PM", 12, 30, false},
		{"9:15 am", 9, 15, false},
		{"3:45 PM", 15, 45, false},
		{"", 0, 0, true},
		{"25:00", 0, 0, true},
		{"10:75", 0, 0, true},
		{"13:00 PM", 0, 0, true},
		{"noon", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			hour, min, err := ParseCivilTime(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCivilTime(%q) expected error, got %d:%d", tt.raw, hour, min)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCivilTime(%q): %v", tt.raw, err)
			}
			if hour != tt.hour || min != tt.min {
				t.Errorf("ParseCivilTime(%q) = %d:%d, want %d:%d", tt.raw, hour, min, tt.hour, tt.min)
			}
		})
	}
}

func TestScheduledInstantUsesDoctorZone(t *testing.T) {
	// March 10 is past the second-Sunday DST switch, so Pacific is UTC-7;
	// January is standard time at UTC-8.
	tests := []struct {
		name    string
		date    string
		wantUTC int
	}{
		{"daylight time", "2026-03-10", 16},
		{"standard time", "2026-01-10", 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Appointment{Date: tt.date, Time: "09:00", DoctorTimeZone: "America/Vancouver"}
			instant, err := ScheduledInstant(a)
			if err != nil {
				t.Fatalf("ScheduledInstant: %v", err)
			}
			if got := instant.UTC().Hour(); got != tt.wantUTC {
				t.Errorf("expected %02d:00 UTC, got %02d:00", tt.wantUTC, got)
			}
		})
	}
}

func TestScheduledInstantDefaultZone(t *testing.T) {
	a := Appointment{Date: "2026-03-10", Time: "09:00"}
	instant, err := ScheduledInstant(a)
	if err != nil {
		t.Fatalf("ScheduledInstant: %v", err)
	}
	// 09:00 Toronto is 13:00 UTC under EDT.
	if got := instant.UTC().Hour(); got != 13 {
		t.Errorf("expected 13:00 UTC, got %02d:00", got)
	}
}

func TestScheduledInstantMidnightWrap(t *testing.T) {
	a := Appointment{Date: "2026-03-10", Time: "24:30", DoctorTimeZone: "UTC"}
	instant, err := ScheduledInstant(a)
	if err != nil {
		t.Fatalf("ScheduledInstant: %v", err)
	}
	if instant.Day() != 10 || instant.Hour() != 0 || instant.Minute() != 30 {
		t.Errorf("24:30 should wrap to 00:30 same day, got %v", instant)
	}
}

func TestIsPastDue(t *testing.T) {
	past := Appointment{Date: "2026-03-10", Time: "08:00", DoctorTimeZone: "UTC"}
	if !IsPastDue(past, ref, nil) {
		t.Error("08:00 UTC should be past a 12:00 UTC reference")
	}

	future := Appointment{Date: "2026-03-10", Time: "18:00", DoctorTimeZone: "UTC"}
	if IsPastDue(future, ref, nil) {
		t.Error("18:00 UTC should not be past a 12:00 UTC reference")
	}
}

func TestIsPastDueZoneShiftsResult(t *testing.T) {
	// Same civil timestamp, different zones: 11:00 in Tokyo has elapsed
	// by 12:00 UTC while 11:00 in Toronto has not.
	a := Appointment{Date: "2026-03-10", Time: "11:00", DoctorTimeZone: "Asia/Tokyo"}
	if !IsPastDue(a, ref, nil) {
		t.Error("11:00 Tokyo (02:00 UTC) should be past a 12:00 UTC reference")
	}

	a.DoctorTimeZone = "America/Toronto"
	if IsPastDue(a, ref, nil) {
		t.Error("11:00 Toronto (15:00 UTC) should not be past a 12:00 UTC reference")
	}
}

func TestIsPastDueFailsClosed(t *testing.T) {
	tests := []Appointment{
		{Date: "2026-03-10", Time: ""},
		{Date: "", Time: "10:00"},
		{Date: "2026-03-10", Time: "later"},
		{Date: "2026-03-10", Time: "10:00", DoctorTimeZone: "Mars/Olympus"},
	}
	for _, a := range tests {
		if IsPastDue(a, ref, nil) {
			t.Errorf("unparseable appointment %+v must not be past due", a)
		}
	}
}
