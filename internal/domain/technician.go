package domain

import "time"

// ShiftTime is a wall-clock time of day in minutes since midnight.
type ShiftTime int

// MinuteOfDay converts a timestamp to minutes since midnight in its location.
func MinuteOfDay(t time.Time) ShiftTime {
	return ShiftTime(t.Hour()*60 + t.Minute())
}

// Technician models a support engineer eligible for ticket assignment.
type Technician struct {
	ID             string
	Name           string
	Email          string
	Role           string
	Department     string
	Specialization []string
	Active         bool
	ShiftStart     ShiftTime
	ShiftEnd       ShiftTime
	AssignedCount  int
	ResolvedCount  int
	LastAssignedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OnShift reports whether the technician is on duty at t. A shift with
// start < end covers [start, end); a shift that wraps past midnight covers
// t >= start or t < end. A zero-width shift covers nothing.
func (tech *Technician) OnShift(t time.Time) bool {
	minute := MinuteOfDay(t)
	start, end := tech.ShiftStart, tech.ShiftEnd
	if start == end {
		return false
	}
	if start < end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}
