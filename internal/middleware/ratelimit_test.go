package middleware_test

import (
	"testing"

	"travel-system/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestSimpleRateLimiter_BurstThenDeny(t *testing.T) {
	rl := middleware.NewSimpleRateLimiter(60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"))
	}
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other clients have their own bucket.
	assert.True(t, rl.Allow("5.6.7.8"))
}
