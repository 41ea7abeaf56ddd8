// Package state holds the derived flags and bookkeeping shared by the
// dashboard stores.
package state

import (
	"errors"
	"strings"
	"sync/atomic"
)

var (
	// ErrNotReady means the credential or identity an action needs is absent.
	ErrNotReady = errors.New("session not ready")
	// ErrCancelled means the user declined a confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrInvalidPayload means input was rejected before any network call.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrSuperseded means a newer request made this response irrelevant.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrBusy means a confirmation is already pending or a mutation running.
	ErrBusy = errors.New("another action is in progress")
)

// ShowSkeleton reports whether a collection view renders placeholders: until
// the first load settles, and while a load runs over an empty collection.
func ShowSkeleton(firstLoadSettled, inFlight bool, size int) bool {
	return !firstLoadSettled || (inFlight && size == 0)
}

// IsPrivileged reports whether roles contains "admin" in any letter case.
func IsPrivileged(roles []string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), "admin") {
			return true
		}
	}
	return false
}

// Generation issues monotonically increasing request numbers. A response is
// applied only while its number is still the latest issued.
type Generation struct {
	n atomic.Uint64
}

// Next issues a new request number, superseding every earlier one.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) Current() uint64 {
	return g.n.Load()
}

func (g *Generation) IsCurrent(n uint64) bool {
	return g.n.Load() == n
}
