package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

type SettingsServiceImpl struct {
	settings.SettingsRepository
}

func NewSettingsService(settingsRepository settings.SettingsRepository) settings.SettingsService {
	return &SettingsServiceImpl{SettingsRepository: settingsRepository}
}

func (s *SettingsServiceImpl) actor(ctx context.Context, manage bool) (access.Actor, string, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, "", err
	}
	if manage && !actor.Can(user.PermissionSettingsManage) {
		return access.Actor{}, "", user.ErrInsufficientPermissions
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return access.Actor{}, "", err
	}
	return actor, companyID, nil
}

// ListSettings returns stored settings plus the defaults of keys never set.
func (s *SettingsServiceImpl) ListSettings(ctx context.Context) ([]settings.SettingResponse, error) {
	_, companyID, err := s.actor(ctx, false)
	if err != nil {
		return nil, err
	}

	stored, err := s.SettingsRepository.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	seen := make(map[string]bool, len(stored))
	result := make([]settings.SettingResponse, 0, len(stored)+len(settings.Defaults))
	for _, st := range stored {
		seen[st.Key] = true
		result = append(result, settings.ToResponse(st))
	}
	for key, value := range settings.Defaults {
		if !seen[key] {
			result = append(result, settings.SettingResponse{Key: key, Value: value})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// GetSetting implements settings.SettingsService.
func (s *SettingsServiceImpl) GetSetting(ctx context.Context, key string) (settings.SettingResponse, error) {
	_, companyID, err := s.actor(ctx, false)
	if err != nil {
		return settings.SettingResponse{}, err
	}

	st, err := s.SettingsRepository.Get(ctx, companyID, key)
	if errors.Is(err, settings.ErrSettingNotFound) {
		if value, ok := settings.Defaults[key]; ok {
			return settings.SettingResponse{Key: key, Value: value}, nil
		}
	}
	if err != nil {
		return settings.SettingResponse{}, err
	}
	return settings.ToResponse(st), nil
}

// UpsertSetting implements settings.SettingsService.
func (s *SettingsServiceImpl) UpsertSetting(ctx context.Context, req settings.UpsertSettingRequest) (settings.SettingResponse, error) {
	actor, companyID, err := s.actor(ctx, true)
	if err != nil {
		return settings.SettingResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return settings.SettingResponse{}, err
	}

	saved, err := s.SettingsRepository.Upsert(ctx, settings.Setting{
		CompanyID: companyID,
		Key:       req.Key,
		Value:     req.Value,
		UpdatedBy: &actor.UserID,
	})
	if err != nil {
		return settings.SettingResponse{}, fmt.Errorf("failed to save setting: %w", err)
	}

	slog.Info("Setting updated", "company_id", companyID, "key", req.Key, "updated_by", actor.UserID)
	return settings.ToResponse(saved), nil
}

// DeleteSetting removes a stored value; known keys fall back to their default.
func (s *SettingsServiceImpl) DeleteSetting(ctx context.Context, key string) error {
	_, companyID, err := s.actor(ctx, true)
	if err != nil {
		return err
	}
	return s.SettingsRepository.Delete(ctx, companyID, key)
}

// AttendanceRules implements settings.SettingsService.
func (s *SettingsServiceImpl) AttendanceRules(ctx context.Context, companyID string) (settings.AttendanceRules, error) {
	values, err := s.SettingsRepository.Values(ctx, companyID)
	if err != nil {
		return settings.AttendanceRules{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings.RulesFrom(values), nil
}
