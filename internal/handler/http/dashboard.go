package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type DashboardHandler interface {
	Overview(w http.ResponseWriter, r *http.Request)
	My(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// Overview handles GET /dashboard
func (h *dashboardHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.Overview(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// My handles GET /dashboard/my
func (h *dashboardHandlerImpl) My(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.My(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
