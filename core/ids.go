package core

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns an opaque entity id such as "att_7f3c…". Uniqueness relies on
// UUID entropy, there is no further enforcement.
func NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
