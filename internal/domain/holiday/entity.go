package holiday

import "time"

// Holiday is a company calendar exception; no attendance is expected on Date.
type Holiday struct {
	ID        string
	CompanyID string
	Name      string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
