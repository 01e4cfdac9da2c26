package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
	List(ctx context.Context) ([]Company, error)
	ListIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, newCompany Company) (Company, error)
	Update(ctx context.Context, id string, req UpdateCompanyRequest) error
	UpdateLogo(ctx context.Context, id string, logoURL string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
