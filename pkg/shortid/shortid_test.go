package shortid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := New()
		assert.Len(t, id, Length)
		for _, r := range id {
			assert.Contains(t, alphabet, string(r))
		}
		assert.False(t, seen[id], "ids should not repeat")
		seen[id] = true
	}
}
