package memory

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ContentHasher fingerprints textual content for change detection and
// deduplication. The hash is deterministic and collision-tolerant; it is not
// a cryptographic integrity check.
type ContentHasher struct{}

// Hash returns a fixed-width hex token for the given content. Equal inputs
// always yield equal tokens.
func (ContentHasher) Hash(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}
