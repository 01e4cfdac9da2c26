package attendance

import "context"

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)
	// GetToday returns nil when the caller has no record today.
	GetToday(ctx context.Context) (*AttendanceResponse, error)
	GetMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
	OverrideStatus(ctx context.Context, req OverrideStatusRequest) (AttendanceResponse, error)
}
