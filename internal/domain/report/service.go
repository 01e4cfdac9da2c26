package report

import "context"

type ReportService interface {
	AttendanceReport(ctx context.Context, req AttendanceReportRequest) (AttendanceReport, error)
	// ExportAttendanceReport renders the attendance report as an XLSX workbook.
	ExportAttendanceReport(ctx context.Context, req AttendanceReportRequest) ([]byte, string, error)
	LeaveReport(ctx context.Context, req LeaveReportRequest) (LeaveReport, error)
}
