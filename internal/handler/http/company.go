package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type CompanyHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetMy(w http.ResponseWriter, r *http.Request)
	UpdateMy(w http.ResponseWriter, r *http.Request)
	UploadLogo(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}

// List implements CompanyHandler.
func (c *CompanyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	companies, err := c.companyService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, companies)
}

// Create implements CompanyHandler.
func (c *CompanyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req company.CreateCompanyRequest
	if !decodeJSON(w, r, "CreateCompany", &req) {
		return
	}

	result, err := c.companyService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Company created", "company_id", result.ID)
	response.Created(w, "Company created successfully", result)
}

// GetMy implements CompanyHandler.
func (c *CompanyHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	result, err := c.companyService.GetMy(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateMy implements CompanyHandler.
func (c *CompanyHandlerImpl) UpdateMy(w http.ResponseWriter, r *http.Request) {
	var req company.UpdateCompanyRequest
	if !decodeJSON(w, r, "UpdateCompany", &req) {
		return
	}

	result, err := c.companyService.UpdateMy(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company updated successfully", result)
}

// UploadLogo implements CompanyHandler. Expects a multipart 'logo' file.
func (c *CompanyHandlerImpl) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("logo")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Field 'logo' is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	result, err := c.companyService.UploadLogo(r.Context(), file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Company logo updated", result)
}
