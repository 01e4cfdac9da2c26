package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, newHoliday Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	List(ctx context.Context, companyID string, filter HolidayFilter) ([]Holiday, error)
	Update(ctx context.Context, req UpdateHolidayRequest) (Holiday, error)
	Delete(ctx context.Context, id string) error
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
}
