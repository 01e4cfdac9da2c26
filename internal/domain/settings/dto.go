package settings

import (
	"regexp"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

var keyRegex = regexp.MustCompile(`^[a-z][a-z0-9_]{1,63}$`)

type UpsertSettingRequest struct {
	Key   string `json:"-"`
	Value string `json:"value"`
}

func (r *UpsertSettingRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Value = strings.TrimSpace(r.Value)
	if !keyRegex.MatchString(r.Key) {
		errs = append(errs, validator.ValidationError{
			Field:   "key",
			Message: ErrInvalidSettingKey.Error(),
		})
	} else if err := ValidateValue(r.Key, r.Value); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "value",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SettingResponse struct {
	Key       string  `json:"key"`
	Value     string  `json:"value"`
	UpdatedBy *string `json:"updated_by,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

func ToResponse(s Setting) SettingResponse {
	return SettingResponse{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedBy: s.UpdatedBy,
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}
