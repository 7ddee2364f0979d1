package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHasher(t *testing.T) {
	var hasher ContentHasher

	assert.Equal(t, hasher.Hash("hello"), hasher.Hash("hello"), "equal inputs must yield equal tokens")
	assert.NotEqual(t, hasher.Hash("hello"), hasher.Hash("hello!"))
	assert.NotEmpty(t, hasher.Hash(""))
}
