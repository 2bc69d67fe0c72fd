package skiplist

import "errors"

var (
	// ErrBadConfig is returned by constructors when the configuration can
	// not produce a usable container.
	ErrBadConfig = errors.New("skiplist: invalid configuration")

	// ErrInvalidRange is returned when a range iterator's lower bound is
	// above its upper bound. No partial iteration is performed.
	ErrInvalidRange = errors.New("skiplist: range lower bound above upper bound")
)
