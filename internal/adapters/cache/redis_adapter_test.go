package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespacedKey(t *testing.T) {
	assert.Equal(t, "clearcompass:cache:pricing:rate:bmc:47562",
		namespacedKey("pricing:rate:bmc:47562"))
	assert.Equal(t, "clearcompass:cache:pricing:quality:mgh",
		namespacedKey("pricing:quality:mgh"))
}

func TestNamespacedKey_DisjointFromRateLimitKeys(t *testing.T) {
	// Rate-limit counters live under "ratelimit:" in the same Redis;
	// cache writes must never land in that keyspace.
	assert.False(t, strings.HasPrefix(namespacedKey("ratelimit:10.0.0.1"), "ratelimit:"))
}
