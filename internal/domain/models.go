package domain

import "time"

// Enumerations
const (
	RoleAdmin    UserRole = "admin"
	RoleCustomer UserRole = "customer"

	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"

	ScheduleRegular ScheduleType = "regular"
	ScheduleRamadan ScheduleType = "ramadan"
)

// SettingActiveSchedule is the app_settings key selecting which business-hours
// variant governs new bookings.
const SettingActiveSchedule = "active_schedule"

type UserRole string
type BookingStatus string
type ScheduleType string

// IsValid reports whether s is one of the three known booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// IsValid reports whether t names a known business-hours variant.
func (t ScheduleType) IsValid() bool {
	return t == ScheduleRegular || t == ScheduleRamadan
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Role         UserRole
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Service struct {
	ID              int64
	Name            string
	Description     string
	DurationMinutes int
	PriceCents      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Duration returns the service length as a time.Duration.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

type Staff struct {
	ID        int64
	Name      string
	Email     string
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// BusinessHours holds the open window for one (weekday, schedule) pair.
// Open and Close are nil when Closed is true. Windows never span midnight.
type BusinessHours struct {
	Day      Weekday
	Schedule ScheduleType
	Open     *TimeOfDay
	Close    *TimeOfDay
	Closed   bool
}

type Booking struct {
	ID        int64
	Code      string
	UserID    int64
	ServiceID int64
	StaffID   int64
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus
	Notes     string
	CreatedAt time.Time

	// Denormalized names for listings; populated by joins, empty otherwise.
	ServiceName  string
	StaffName    string
	CustomerName string
}

// Overlaps reports whether the half-open intervals [b.StartTime, b.EndTime)
// and [start, end) intersect.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
