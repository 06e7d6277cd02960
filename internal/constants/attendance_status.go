package constants

type AttendanceStatus string

const (
	AttendancePresent        AttendanceStatus = "present"
	AttendanceAbsent         AttendanceStatus = "absent"
	AttendanceLate           AttendanceStatus = "late"
	AttendanceEarlyDeparture AttendanceStatus = "early-departure"
	AttendanceHalfDay        AttendanceStatus = "half-day"
)

// DateLayout is the calendar-day bucket format used by time entries and attendance.
const DateLayout = "2006-01-02"
