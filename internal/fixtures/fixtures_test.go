package fixtures

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultLeaveTypes(t *testing.T) {
	types := GetDefaultLeaveTypes("company-1")
	require.Len(t, types, 3)

	for _, lt := range types {
		assert.Equal(t, "company-1", lt.CompanyID)
		assert.True(t, lt.IsActive)
	}
	assert.True(t, types[1].RequiresAttachment)
	assert.True(t, types[2].DefaultDays.IsZero())
}

func TestGetDefaultSettings(t *testing.T) {
	got := GetDefaultSettings("company-1")
	require.Len(t, got, len(settings.Defaults))
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Key, got[i].Key)
	}
	for _, s := range got {
		assert.Equal(t, settings.Defaults[s.Key], s.Value)
		assert.NoError(t, settings.ValidateValue(s.Key, s.Value))
	}
}

func TestGetDemoAccounts_ManagersExist(t *testing.T) {
	codes := map[string]bool{}
	for _, a := range GetDemoAccounts() {
		if a.EmployeeCode != "" {
			codes[a.EmployeeCode] = true
		}
	}
	for _, a := range GetDemoAccounts() {
		if a.ManagerCode != "" {
			assert.True(t, codes[a.ManagerCode], a.Email)
		}
	}
}
