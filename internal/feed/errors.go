package feed

import "errors"

var (
	// ErrGap подписчик отстал или транспорт потерял непрерывность, нужен полный resync.
	ErrGap = errors.New("change feed gap")

	ErrClosed       = errors.New("change feed closed")
	ErrMissingStore = errors.New("change event without store id")
	ErrBadMessage   = errors.New("malformed change feed message")
)
