// Package lock serialises the check-then-write sequence of session placement
// per (weekday, slot) key.
package lock

import (
	"context"
	"errors"
	"strings"
)

// ErrTimeout is returned when a key stays held past the configured wait.
var ErrTimeout = errors.New("lock: wait timeout")

// Release frees a held key. It is safe to call more than once.
type Release func(ctx context.Context) error

// Locker grants exclusive ownership of a key. Implementations give up with
// ErrTimeout once their configured wait elapses. A non-positive wait means no
// timeout: Acquire blocks until the key frees or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Key joins the prefix and parts with ':'.
func Key(prefix string, parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if prefix != "" {
		all = append(all, prefix)
	}
	all = append(all, parts...)
	return strings.Join(all, ":")
}
