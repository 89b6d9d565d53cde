// Package store holds what the topic and message stores share.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no snapshot exists for a client#period key.
var ErrNotFound = errors.New("store: not found")

// Retention is how long a stored topic row stays valid.
const Retention = 30 * 24 * time.Hour

// TopicID builds the stored identifier of the topic at rank.
func TopicID(rank int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("topic_%d_%s", rank, hex[:8])
}
