package access

import "errors"

var (
	ErrOutOfScope = errors.New("record is outside of your access scope")
	ErrNoSession  = errors.New("no authenticated session")
)
