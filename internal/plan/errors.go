package plan

import "errors"

var (
	ErrInvalidDuration    = errors.New("duration must be 4, 6 or 8 weeks")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrWeekOutOfRange     = errors.New("week out of range")
	ErrDuplicateWeek      = errors.New("week listed more than once")
	ErrUnknownBrand       = errors.New("unknown brand")
	ErrUnknownEmailType   = errors.New("unknown email type")
	ErrUnknownContentType = errors.New("unknown content type")
	ErrUnknownField       = errors.New("unknown field")
)
