package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	// GET /reports/attendance?start_date=&end_date=&employee_id=
	AttendanceReport(w http.ResponseWriter, r *http.Request)
	// Same query, rendered as XLSX
	ExportAttendanceReport(w http.ResponseWriter, r *http.Request)
	// GET /reports/leave?start_date=&end_date=&status=
	LeaveReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func attendanceReportRequest(r *http.Request) report.AttendanceReportRequest {
	return report.AttendanceReportRequest{
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
		EmployeeID: queryString(r, "employee_id"),
	}
}

func (h *reportHandlerImpl) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.AttendanceReport(r.Context(), attendanceReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *reportHandlerImpl) ExportAttendanceReport(w http.ResponseWriter, r *http.Request) {
	body, filename, err := h.reportService.ExportAttendanceReport(r.Context(), attendanceReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, filename, xlsxContentType, body)
}

func (h *reportHandlerImpl) LeaveReport(w http.ResponseWriter, r *http.Request) {
	req := report.LeaveReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Status:    queryString(r, "status"),
	}

	result, err := h.reportService.LeaveReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
