package holiday

import "context"

type HolidayService interface {
	ListHolidays(ctx context.Context, filter HolidayFilter) ([]HolidayResponse, error)
	GetHoliday(ctx context.Context, id string) (HolidayResponse, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	UpdateHoliday(ctx context.Context, req UpdateHolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
}
