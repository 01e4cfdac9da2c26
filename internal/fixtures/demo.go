package fixtures

import "github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"

// DemoCompany is the tenant created by the seed-demo command.
const (
	DemoCompanyName     = "Demo Company"
	DemoCompanyUsername = "demo-company"
	DemoPassword        = "demo-password"
)

// DemoAccount is one seeded login with its employee profile.
type DemoAccount struct {
	Email        string
	FullName     string
	EmployeeCode string
	Department   string
	Position     string
	Role         user.Role
	// ManagerCode links the account to another demo employee by code.
	ManagerCode string
}

// GetDemoAccounts returns one account per company role. The super_admin has
// no employee profile and therefore an empty EmployeeCode.
func GetDemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			Email:    "superadmin@demo.local",
			FullName: "Demo Super Admin",
			Role:     user.RoleSuperAdmin,
		},
		{
			Email:        "admin@demo.local",
			FullName:     "Dana Admin",
			EmployeeCode: "DEMO-001",
			Department:   "People",
			Position:     "HR Manager",
			Role:         user.RoleAdmin,
		},
		{
			Email:        "manager@demo.local",
			FullName:     "Morgan Manager",
			EmployeeCode: "DEMO-002",
			Department:   "Engineering",
			Position:     "Engineering Lead",
			Role:         user.RoleReportingManager,
			ManagerCode:  "DEMO-001",
		},
		{
			Email:        "employee@demo.local",
			FullName:     "Evan Employee",
			EmployeeCode: "DEMO-003",
			Department:   "Engineering",
			Position:     "Software Engineer",
			Role:         user.RoleEmployee,
			ManagerCode:  "DEMO-002",
		},
		{
			Email:        "employee2@demo.local",
			FullName:     "Avery Analyst",
			EmployeeCode: "DEMO-004",
			Department:   "Engineering",
			Position:     "QA Engineer",
			Role:         user.RoleEmployee,
			ManagerCode:  "DEMO-002",
		},
	}
}
