package monitor

import (
	"errors"
)

type State int

const (
	StateInitializing State = iota
	StatePolling
	StateProcessing
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StatePolling:
		return "POLLING"
	case StateProcessing:
		return "PROCESSING"
	case StateBackoff:
		return "BACKOFF"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrPersistence  = errors.New("can't persist deposit state")
	ErrNotification = errors.New("can't deliver deposit notification")
)
