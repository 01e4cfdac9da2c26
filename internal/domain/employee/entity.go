package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type Employee struct {
	ID           string
	CompanyID    string
	UserID       *string
	EmployeeCode string
	FullName     string
	Email        string
	Phone        *string
	Department   *string
	Position     *string
	ManagerID    *string
	TeamID       *string
	HireDate     *time.Time
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	Role        *user.Role
	ManagerName *string
	TeamName    *string
}

// Subject returns the ownership data used for scope checks.
func (e Employee) Subject() access.Subject {
	return access.Subject{EmployeeID: e.ID, CompanyID: e.CompanyID, ManagerID: e.ManagerID}
}
