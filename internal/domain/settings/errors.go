package settings

import "errors"

var (
	ErrSettingNotFound   = errors.New("setting not found")
	ErrInvalidSettingKey = errors.New("setting key must be 2-64 lowercase letters, digits or underscores")
)
