package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createCompany(t *testing.T, db *database.DB, username string) company.Company {
	t.Helper()
	c, err := postgresql.NewCompanyRepository(db).Create(context.Background(), company.Company{
		Name:     "Company " + username,
		Username: username,
	})
	require.NoError(t, err)
	return c
}

// createEmployee creates a user with role and a linked employee profile.
func createEmployee(t *testing.T, db *database.DB, companyID, code string, role user.Role, managerID *string) employee.Employee {
	t.Helper()
	ctx := context.Background()

	u, err := postgresql.NewUserRepository(db).Create(ctx, user.User{
		CompanyID: &companyID,
		Email:     code + "@example.com",
		Role:      role,
		IsActive:  true,
	})
	require.NoError(t, err)

	emp, err := postgresql.NewEmployeeRepository(db).Create(ctx, employee.Employee{
		CompanyID:    companyID,
		UserID:       &u.ID,
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Email:        code + "@example.com",
		ManagerID:    managerID,
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}
