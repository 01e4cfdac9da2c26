package company

import (
	"context"
	"io"
)

type CompanyService interface {
	// GetMy returns the caller's company (or the selected tenant for super_admin).
	GetMy(ctx context.Context) (CompanyResponse, error)
	UpdateMy(ctx context.Context, req UpdateCompanyRequest) (CompanyResponse, error)
	UploadLogo(ctx context.Context, file io.Reader, filename string) (CompanyResponse, error)
	List(ctx context.Context) ([]CompanyResponse, error)
	// Create registers a company and seeds its default leave types and settings.
	Create(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
}
