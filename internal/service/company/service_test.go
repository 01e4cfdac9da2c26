package company

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/company"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{}

func (inlineTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type memoryCompanies struct {
	company.CompanyRepository
	byID map[string]company.Company
}

func (m *memoryCompanies) GetByID(ctx context.Context, id string) (company.Company, error) {
	c, ok := m.byID[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (m *memoryCompanies) List(ctx context.Context) ([]company.Company, error) {
	var out []company.Company
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryCompanies) Create(ctx context.Context, c company.Company) (company.Company, error) {
	c.ID = "new-company"
	m.byID[c.ID] = c
	return c, nil
}

func (m *memoryCompanies) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) error {
	c := m.byID[id]
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	m.byID[id] = c
	return nil
}

func (m *memoryCompanies) UpdateLogo(ctx context.Context, id string, logoURL string) error {
	c := m.byID[id]
	c.LogoURL = &logoURL
	m.byID[id] = c
	return nil
}

func (m *memoryCompanies) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, c := range m.byID {
		if c.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type memoryTypes struct {
	leave.LeaveTypeRepository
	created []leave.LeaveType
}

func (m *memoryTypes) Create(ctx context.Context, lt leave.LeaveType) (leave.LeaveType, error) {
	m.created = append(m.created, lt)
	return lt, nil
}

type memorySettings struct {
	settings.SettingsRepository
	upserted []settings.Setting
}

func (m *memorySettings) Upsert(ctx context.Context, s settings.Setting) (settings.Setting, error) {
	m.upserted = append(m.upserted, s)
	return s, nil
}

type fixture struct {
	svc       *CompanyServiceImpl
	companies *memoryCompanies
	types     *memoryTypes
	settings  *memorySettings
	dir       string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	companies := &memoryCompanies{byID: map[string]company.Company{
		"c1": {ID: "c1", Name: "Acme", Username: "acme"},
	}}
	types := &memoryTypes{}
	settingsRepo := &memorySettings{}
	svc := NewCompanyService(inlineTx{}, companies, types, settingsRepo, file.NewFileService(store)).(*CompanyServiceImpl)
	return fixture{svc: svc, companies: companies, types: types, settings: settingsRepo, dir: dir}
}

func actorCtx(role user.Role, companyID string) context.Context {
	return session.WithActor(context.Background(), access.Actor{UserID: "u1", CompanyID: companyID, Role: role})
}

func TestCreate_SeedsDefaults(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(actorCtx(user.RoleSuperAdmin, ""), company.CreateCompanyRequest{Name: "Globex", Username: "globex"})
	require.NoError(t, err)
	assert.Equal(t, "new-company", resp.ID)

	require.Len(t, f.types.created, 3)
	for _, lt := range f.types.created {
		assert.Equal(t, "new-company", lt.CompanyID)
	}
	assert.Len(t, f.settings.upserted, len(settings.Defaults))
}

func TestCreate_Rules(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(actorCtx(user.RoleAdmin, "c1"), company.CreateCompanyRequest{Name: "Globex", Username: "globex"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.svc.Create(actorCtx(user.RoleSuperAdmin, ""), company.CreateCompanyRequest{Name: "Acme 2", Username: "acme"})
	assert.ErrorIs(t, err, company.ErrCompanyUsernameExists)
	assert.Empty(t, f.types.created)
}

func TestGetMy_SuperAdminNeedsTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetMy(actorCtx(user.RoleSuperAdmin, ""))
	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)

	resp, err := f.svc.GetMy(actorCtx(user.RoleSuperAdmin, "c1"))
	require.NoError(t, err)
	assert.Equal(t, "Acme", resp.Name)
}

func TestUpdateMy(t *testing.T) {
	f := newFixture(t)
	name := "Acme Corp"

	_, err := f.svc.UpdateMy(actorCtx(user.RoleReportingManager, "c1"), company.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	resp, err := f.svc.UpdateMy(actorCtx(user.RoleAdmin, "c1"), company.UpdateCompanyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", resp.Name)
}

func TestUploadLogo_ReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx(user.RoleAdmin, "c1")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))))
	logo := buf.Bytes()

	first, err := f.svc.UploadLogo(ctx, bytes.NewReader(logo), "logo.png")
	require.NoError(t, err)
	require.NotNil(t, first.LogoURL)
	firstPath := *f.companies.byID["c1"].LogoURL
	_, err = os.Stat(filepath.Join(f.dir, firstPath))
	require.NoError(t, err)

	_, err = f.svc.UploadLogo(ctx, bytes.NewReader(logo), "logo.png")
	require.NoError(t, err)
	secondPath := *f.companies.byID["c1"].LogoURL
	assert.NotEqual(t, firstPath, secondPath)

	_, err = os.Stat(filepath.Join(f.dir, firstPath))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadLogo_RejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadLogo(actorCtx(user.RoleAdmin, "c1"), bytes.NewReader([]byte("text")), "logo.txt")
	assert.ErrorIs(t, err, file.ErrInvalidFileType)
}
