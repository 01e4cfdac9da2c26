package company

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

type CompanyServiceImpl struct {
	tx postgresql.Transactor
	company.CompanyRepository
	fileService file.FileService

	// Repositories for seeding default data
	leaveTypeRepo leave.LeaveTypeRepository
	settingsRepo  settings.SettingsRepository
}

func NewCompanyService(
	tx postgresql.Transactor,
	companyRepository company.CompanyRepository,
	leaveTypeRepository leave.LeaveTypeRepository,
	settingsRepository settings.SettingsRepository,
	fileService file.FileService,
) company.CompanyService {
	return &CompanyServiceImpl{
		tx:                tx,
		CompanyRepository: companyRepository,
		fileService:       fileService,
		leaveTypeRepo:     leaveTypeRepository,
		settingsRepo:      settingsRepository,
	}
}

// SeedDefaults creates the default leave types and settings of a new company.
// It runs inside the caller's transaction when ctx carries one.
func SeedDefaults(ctx context.Context, leaveTypes leave.LeaveTypeRepository, settingsRepo settings.SettingsRepository, companyID string) error {
	types := fixtures.GetDefaultLeaveTypes(companyID)
	for _, lt := range types {
		if _, err := leaveTypes.Create(ctx, lt); err != nil {
			return fmt.Errorf("failed to seed leave type %q: %w", lt.Name, err)
		}
	}

	defaults := fixtures.GetDefaultSettings(companyID)
	for _, s := range defaults {
		if _, err := settingsRepo.Upsert(ctx, s); err != nil {
			return fmt.Errorf("failed to seed setting %q: %w", s.Key, err)
		}
	}

	slog.Info("Seeded company defaults", "company_id", companyID, "leave_types", len(types), "settings", len(defaults))
	return nil
}

func (c *CompanyServiceImpl) authorize(ctx context.Context, p user.Permission) (access.Actor, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, err
	}
	if !actor.Can(p) {
		return access.Actor{}, user.ErrInsufficientPermissions
	}
	return actor, nil
}

func (c *CompanyServiceImpl) toResponse(ctx context.Context, data company.Company) company.CompanyResponse {
	resp := company.ToResponse(data)
	if data.LogoURL != nil && *data.LogoURL != "" {
		if url, err := c.fileService.GetFileURL(ctx, *data.LogoURL, 0); err == nil {
			resp.LogoURL = &url
		}
	}
	return resp
}

// GetMy implements company.CompanyService.
func (c *CompanyServiceImpl) GetMy(ctx context.Context) (company.CompanyResponse, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	data, err := c.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return c.toResponse(ctx, data), nil
}

// UpdateMy implements company.CompanyService.
func (c *CompanyServiceImpl) UpdateMy(ctx context.Context, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	actor, err := c.authorize(ctx, user.PermissionCompanyManage)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	if err := c.CompanyRepository.Update(ctx, companyID, req); err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to update company: %w", err)
	}
	return c.GetMy(ctx)
}

// UploadLogo implements company.CompanyService.
func (c *CompanyServiceImpl) UploadLogo(ctx context.Context, f io.Reader, filename string) (company.CompanyResponse, error) {
	actor, err := c.authorize(ctx, user.PermissionCompanyManage)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	data, err := c.CompanyRepository.GetByID(ctx, companyID)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	path, err := c.fileService.UploadCompanyLogo(ctx, data.Username, f, filename)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	if err := c.CompanyRepository.UpdateLogo(ctx, companyID, path); err != nil {
		if delErr := c.fileService.DeleteFile(ctx, path); delErr != nil {
			slog.Warn("Failed to remove orphaned logo", "path", path, "error", delErr)
		}
		return company.CompanyResponse{}, fmt.Errorf("failed to update company logo: %w", err)
	}

	if data.LogoURL != nil && *data.LogoURL != "" && *data.LogoURL != path {
		if err := c.fileService.DeleteFile(ctx, *data.LogoURL); err != nil {
			slog.Warn("Failed to remove previous logo", "path", *data.LogoURL, "error", err)
		}
	}

	data.LogoURL = &path
	return c.toResponse(ctx, data), nil
}

// List implements company.CompanyService.
func (c *CompanyServiceImpl) List(ctx context.Context) ([]company.CompanyResponse, error) {
	if _, err := c.authorize(ctx, user.PermissionCompanyCreate); err != nil {
		return nil, err
	}

	companies, err := c.CompanyRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	result := make([]company.CompanyResponse, 0, len(companies))
	for _, data := range companies {
		result = append(result, c.toResponse(ctx, data))
	}
	return result, nil
}

// Create implements company.CompanyService.
func (c *CompanyServiceImpl) Create(ctx context.Context, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if _, err := c.authorize(ctx, user.PermissionCompanyCreate); err != nil {
		return company.CompanyResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	exists, err := c.CompanyRepository.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to check company username: %w", err)
	}
	if exists {
		return company.CompanyResponse{}, company.ErrCompanyUsernameExists
	}

	var created company.Company
	err = c.tx.InTx(ctx, func(ctx context.Context) error {
		created, err = c.CompanyRepository.Create(ctx, company.Company{
			Name:     req.Name,
			Username: req.Username,
			Address:  req.Address,
		})
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		return SeedDefaults(ctx, c.leaveTypeRepo, c.settingsRepo, created.ID)
	})
	if err != nil {
		return company.CompanyResponse{}, err
	}

	slog.Info("Company created", "company_id", created.ID, "username", created.Username)
	return company.ToResponse(created), nil
}
