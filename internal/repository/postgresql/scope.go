package postgresql

import (
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
)

// scopeCondition renders the WHERE fragment that limits rows to scope.
// employeeCol and companyCol are the owning columns of the row and
// managerCol the manager of the owning employee. Placeholders continue at
// argIdx; the returned args and next index are to be appended by the caller.
func scopeCondition(scope access.Scope, employeeCol, companyCol, managerCol string, argIdx int) (string, []interface{}, int) {
	switch scope.Kind {
	case access.ScopeSelf:
		return fmt.Sprintf("%s = $%d", employeeCol, argIdx), []interface{}{scope.EmployeeID}, argIdx + 1
	case access.ScopeTeam:
		if scope.CompanyID == "" {
			return fmt.Sprintf("(%s = $%d OR %s = $%d)", employeeCol, argIdx, managerCol, argIdx),
				[]interface{}{scope.EmployeeID}, argIdx + 1
		}
		return fmt.Sprintf("(%s = $%d AND (%s = $%d OR %s = $%d))",
				companyCol, argIdx, employeeCol, argIdx+1, managerCol, argIdx+1),
			[]interface{}{scope.CompanyID, scope.EmployeeID}, argIdx + 2
	case access.ScopeCompany:
		return fmt.Sprintf("%s = $%d", companyCol, argIdx), []interface{}{scope.CompanyID}, argIdx + 1
	case access.ScopeAll:
		return "TRUE", nil, argIdx
	default:
		return "FALSE", nil, argIdx
	}
}

// companyCondition limits company-level tables (leave types, holidays,
// settings) to the scope's company.
func companyCondition(scope access.Scope, companyCol string, argIdx int) (string, []interface{}, int) {
	switch scope.Kind {
	case access.ScopeAll:
		return "TRUE", nil, argIdx
	case access.ScopeNone:
		return "FALSE", nil, argIdx
	default:
		return fmt.Sprintf("%s = $%d", companyCol, argIdx), []interface{}{scope.CompanyID}, argIdx + 1
	}
}
