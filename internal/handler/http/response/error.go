package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Session and access
	case errors.Is(err, access.ErrNoSession):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, access.ErrOutOfScope):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrAdminPrivilegeRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrSuperAdminRequired),
		errors.Is(err, employee.ErrRoleNotAssignable),
		errors.Is(err, leave.ErrCannotApproveOwnRequest),
		errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrCompanyIDRequired):
		BadRequest(w, "Select a company with the X-Company-ID header", nil)
	case errors.Is(err, user.ErrEmployeeProfileRequired):
		Forbidden(w, err.Error())

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive), errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is deactivated")
	case errors.Is(err, auth.ErrGoogleNotLinked):
		Forbidden(w, err.Error())
	case errors.Is(err, auth.ErrGoogleDisabled), errors.Is(err, auth.ErrDemoLoginDisabled):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrDemoUserNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, auth.ErrEmailAlreadyExists), errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Company
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrCompanyUsernameExists):
		Conflict(w, "Company username already exists")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered in this company")
	case errors.Is(err, employee.ErrManagerNotFound), errors.Is(err, employee.ErrTeamNotFound):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, employee.ErrEmployeeAlreadyInactive):
		Conflict(w, err.Error())
	case errors.Is(err, employee.ErrCannotDeactivateSelf):
		BadRequest(w, err.Error(), nil)

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrLeaveTypeNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrLeaveTypeInUse):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrLeaveTypeInactive),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrAttachmentRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")

	// Teams, holidays, settings
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, team.ErrTeamNameExists):
		Conflict(w, err.Error())
	case errors.Is(err, team.ErrLeadNotFound),
		errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, team.ErrMemberNotInTeam):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayDateExists):
		Conflict(w, err.Error())
	case errors.Is(err, settings.ErrSettingNotFound):
		NotFound(w, "Setting not found")
	case errors.Is(err, settings.ErrInvalidSettingKey):
		BadRequest(w, err.Error(), nil)

	// Reports, notifications, files
	case errors.Is(err, report.ErrRangeTooLarge):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, file.ErrInvalidFileType):
		BadRequest(w, "Invalid file type", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
