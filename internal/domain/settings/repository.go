package settings

import "context"

type SettingsRepository interface {
	List(ctx context.Context, companyID string) ([]Setting, error)
	Get(ctx context.Context, companyID, key string) (Setting, error)
	Upsert(ctx context.Context, setting Setting) (Setting, error)
	Delete(ctx context.Context, companyID, key string) error
	// Values returns every key/value of the company.
	Values(ctx context.Context, companyID string) (map[string]string, error)
}
