package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
)

func AllStatuses() []string {
	return []string{string(StatusPresent), string(StatusLate), string(StatusAbsent), string(StatusHalfDay)}
}

// Attendance is the single record of one employee for one calendar date.
type Attendance struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	Date         time.Time
	CheckIn      *time.Time
	CheckOut     *time.Time
	Status       Status
	WorkMinutes  *int
	Notes        *string
	OverriddenBy *string
	OverriddenAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeName string
	EmployeeCode string
	Department   *string
	ManagerID    *string
}

func (a Attendance) Subject() access.Subject {
	return access.Subject{EmployeeID: a.EmployeeID, CompanyID: a.CompanyID, ManagerID: a.ManagerID}
}
