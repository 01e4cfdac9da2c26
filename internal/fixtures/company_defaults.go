package fixtures

import (
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// GetDefaultLeaveTypes returns the leave types every new company starts with.
func GetDefaultLeaveTypes(companyID string) []leave.LeaveType {
	return []leave.LeaveType{
		{
			CompanyID:   companyID,
			Name:        "Annual Leave",
			Description: strPtr("Paid yearly leave entitlement"),
			DefaultDays: decimal.NewFromInt(12),
			IsActive:    true,
		},
		{
			CompanyID:          companyID,
			Name:               "Sick Leave",
			Description:        strPtr("Requires a medical certificate"),
			DefaultDays:        decimal.NewFromInt(12),
			RequiresAttachment: true,
			IsActive:           true,
		},
		// Unpaid leave has no balance row, so it is never limited
		{
			CompanyID:   companyID,
			Name:        "Unpaid Leave",
			Description: strPtr("Leave without pay"),
			DefaultDays: decimal.Zero,
			IsActive:    true,
		},
	}
}

// ==========================================
// DEFAULT SETTINGS
// ==========================================

// GetDefaultSettings returns the initial settings of a company, sorted by key.
func GetDefaultSettings(companyID string) []settings.Setting {
	keys := make([]string, 0, len(settings.Defaults))
	for key := range settings.Defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]settings.Setting, 0, len(keys))
	for _, key := range keys {
		result = append(result, settings.Setting{
			CompanyID: companyID,
			Key:       key,
			Value:     settings.Defaults[key],
		})
	}
	return result
}
