package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blog-content-api/internal/kvstore"
)

// Counter allocates sequential article identifiers from the SYSTEM_INDEX_NUM
// record. The counter only ever increments.
//
// Known limitation: the read-increment-write sequence is not serialized, so
// two concurrent allocations can hand out the same identifier. The design
// assumes a single admin writer and does not mask the race.
type Counter struct {
	kv kvstore.Store
}

// NewCounter creates a Counter over kv.
func NewCounter(kv kvstore.Store) *Counter {
	return &Counter{kv: kv}
}

// Next increments the persisted counter and returns the new value formatted as
// a 6-digit zero-padded identifier. An absent or unparseable counter record
// starts from zero.
func (c *Counter) Next(ctx context.Context) (string, error) {
	raw, _, err := c.kv.Get(ctx, keyIndexNum)
	if err != nil {
		return "", fmt.Errorf("read counter: %w", err)
	}

	current, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || current < 0 {
		current = 0
	}

	next := current + 1
	if err := c.kv.Put(ctx, keyIndexNum, strconv.Itoa(next)); err != nil {
		return "", fmt.Errorf("persist counter: %w", err)
	}

	return fmt.Sprintf("%06d", next), nil
}
