package report

import "errors"

var ErrRangeTooLarge = errors.New("report range must not exceed 366 days")
