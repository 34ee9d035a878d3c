// errors.go
package widgetprefs

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidWidget      = errors.New("invalid widget descriptor")
	ErrDuplicateWidget    = errors.New("duplicate widget id")
	ErrNotFound           = errors.New("record not found")
	ErrCorruptState       = errors.New("corrupt visibility state")
	ErrSerialization      = errors.New("serialization failed")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
)
