package appointments

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mapleime/doctor-portal/pkg/logging"
)

// DefaultTimeZone is assumed when an appointment carries no doctorTimeZone.
// Set once at startup, before any requests are served.
var DefaultTimeZone = "America/Toronto"

const civilDateLayout = "2006-01-02"

// urgentWindowDays is the inclusive look-ahead for the urgent badge: a
// pending appointment due today through two days out counts as urgent.
const urgentWindowDays = 2

// IsUrgentPending reports whether the appointment is a pending one due
// within the urgent window. "Today" is the calendar date of ref in ref's
// own location, not the doctor's zone. Past-due classification does use the
// doctor's zone; the mismatch is inherited behavior the rest of the
// dashboard depends on, so both sides keep it.
func IsUrgentPending(a Appointment, ref time.Time) bool {
	if a.CanonicalStatus() != StatusPending {
		return false
	}
	date, err := time.Parse(civilDateLayout, strings.TrimSpace(a.Date))
	if err != nil {
		return false
	}
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, urgentWindowDays)
	return !date.Before(today) && !date.After(end)
}

// IsPastDue reports whether the appointment's doctor-local civil timestamp
// has already elapsed relative to ref. Unparseable records are never marked
// past: a broken timestamp should not silently open attendance actions.
func IsPastDue(a Appointment, ref time.Time, logger *logging.Logger) bool {
	instant, err := ScheduledInstant(a)
	if err != nil {
		if logger != nil {
			logger.Warn("unparseable appointment timestamp",
				"appointment_id", a.ID,
				"date", a.Date,
				"time", a.Time,
				"error", err,
			)
		}
		return false
	}
	return instant.Before(ref)
}

// ScheduledInstant converts the appointment's civil date+time into an
// absolute instant under its doctor timezone (DefaultTimeZone when absent).
func ScheduledInstant(a Appointment) (time.Time, error) {
	dateRaw := strings.TrimSpace(a.Date)
	timeRaw := strings.TrimSpace(a.Time)
	if dateRaw == "" || timeRaw == "" {
		return time.Time{}, fmt.Errorf("appointments: missing date or time")
	}

	date, err := time.Parse(civilDateLayout, dateRaw)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: parse date %q: %w", dateRaw, err)
	}

	hour, minute, err := ParseCivilTime(timeRaw)
	if err != nil {
		return time.Time{}, err
	}

	tzName := strings.TrimSpace(a.DoctorTimeZone)
	if tzName == "" {
		tzName = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointments: load zone %q: %w", tzName, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

// ParseCivilTime parses a doctor-local time-of-day string. The 12-hour form
// is detected by the presence of an AM/PM marker ("M"); anything else is
// read as 24-hour. An hour of 24 wraps to 00 of the same reading rather
// than rolling to the next day, matching how upstream formats midnight.
func ParseCivilTime(raw string) (hour, minute int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, fmt.Errorf("appointments: empty time")
	}

	meridiem := ""
	clock := raw
	if strings.Contains(strings.ToUpper(raw), "M") {
		fields := strings.Fields(raw)
		if len(fields) != 2 {
			return 0, 0, fmt.Errorf("appointments: malformed 12h time %q", raw)
		}
		clock = fields[0]
		meridiem = strings.ToUpper(fields[1])
		if meridiem != "AM" && meridiem != "PM" {
			return 0, 0, fmt.Errorf("appointments: malformed meridiem in %q", raw)
		}
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("appointments: malformed time %q", raw)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("appointments: bad hour in %q", raw)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("appointments: bad minute in %q", raw)
	}

	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("appointments: 12h hour out of range in %q", raw)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	}

	// Timezone-formatted sources emit "24:xx" for midnight; wrap to 00
	// without advancing the day.
	if hour == 24 {
		hour = 0
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("appointments: time out of range %q", raw)
	}
	return hour, minute, nil
}
