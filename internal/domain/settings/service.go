package settings

import "context"

type SettingsService interface {
	ListSettings(ctx context.Context) ([]SettingResponse, error)
	GetSetting(ctx context.Context, key string) (SettingResponse, error)
	UpsertSetting(ctx context.Context, req UpsertSettingRequest) (SettingResponse, error)
	DeleteSetting(ctx context.Context, key string) error
	// AttendanceRules loads the rules of a company with defaults applied.
	AttendanceRules(ctx context.Context, companyID string) (AttendanceRules, error)
}
