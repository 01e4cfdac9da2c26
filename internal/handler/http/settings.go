package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type settingsHandlerImpl struct {
	settingsService settings.SettingsService
}

func NewSettingsHandler(settingsService settings.SettingsService) SettingsHandler {
	return &settingsHandlerImpl{settingsService: settingsService}
}

func (h *settingsHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.ListSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *settingsHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.settingsService.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Upsert stores {"value": ...} under the key in the path.
func (h *settingsHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req settings.UpsertSettingRequest
	if !decodeJSON(w, r, "UpsertSetting", &req) {
		return
	}
	req.Key = chi.URLParam(r, "key")

	result, err := h.settingsService.UpsertSetting(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Setting saved", result)
}

func (h *settingsHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.settingsService.DeleteSetting(r.Context(), chi.URLParam(r, "key")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Setting deleted", nil)
}
