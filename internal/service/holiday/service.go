package holiday

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/access"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/session"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
}

func NewHolidayService(holidayRepository holiday.HolidayRepository) holiday.HolidayService {
	return &HolidayServiceImpl{HolidayRepository: holidayRepository}
}

func (s *HolidayServiceImpl) actor(ctx context.Context, manage bool) (access.Actor, string, error) {
	actor, err := session.FromContext(ctx)
	if err != nil {
		return access.Actor{}, "", err
	}
	if manage && !actor.Can(user.PermissionHolidayManage) {
		return access.Actor{}, "", user.ErrInsufficientPermissions
	}
	companyID, err := session.RequireCompany(actor)
	if err != nil {
		return access.Actor{}, "", err
	}
	return actor, companyID, nil
}

// get loads a holiday of companyID; holidays of other companies do not exist.
func (s *HolidayServiceImpl) get(ctx context.Context, companyID, id string) (holiday.Holiday, error) {
	h, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return holiday.Holiday{}, err
	}
	if h.CompanyID != companyID {
		return holiday.Holiday{}, holiday.ErrHolidayNotFound
	}
	return h, nil
}

// ListHolidays implements holiday.HolidayService.
func (s *HolidayServiceImpl) ListHolidays(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
	_, companyID, err := s.actor(ctx, false)
	if err != nil {
		return nil, err
	}

	holidays, err := s.HolidayRepository.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	result := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		result = append(result, holiday.ToResponse(h))
	}
	return result, nil
}

// GetHoliday implements holiday.HolidayService.
func (s *HolidayServiceImpl) GetHoliday(ctx context.Context, id string) (holiday.HolidayResponse, error) {
	_, companyID, err := s.actor(ctx, false)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	h, err := s.get(ctx, companyID, id)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(h), nil
}

// CreateHoliday implements holiday.HolidayService.
func (s *HolidayServiceImpl) CreateHoliday(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	_, companyID, err := s.actor(ctx, true)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	created, err := s.HolidayRepository.Create(ctx, holiday.Holiday{
		CompanyID: companyID,
		Name:      req.Name,
		Date:      req.ParsedDate,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(created), nil
}

// UpdateHoliday implements holiday.HolidayService.
func (s *HolidayServiceImpl) UpdateHoliday(ctx context.Context, req holiday.UpdateHolidayRequest) (holiday.HolidayResponse, error) {
	_, companyID, err := s.actor(ctx, true)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	if _, err := s.get(ctx, companyID, req.ID); err != nil {
		return holiday.HolidayResponse{}, err
	}

	updated, err := s.HolidayRepository.Update(ctx, req)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(updated), nil
}

// DeleteHoliday implements holiday.HolidayService.
func (s *HolidayServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	_, companyID, err := s.actor(ctx, true)
	if err != nil {
		return err
	}
	if _, err := s.get(ctx, companyID, id); err != nil {
		return err
	}
	return s.HolidayRepository.Delete(ctx, id)
}
