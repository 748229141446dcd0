package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedKey_IsStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	var nilKey *FeedKey
	assert.True(t, nilKey.IsStale(now, ttl))
	assert.True(t, (&FeedKey{}).IsStale(now, ttl))
	assert.False(t, (&FeedKey{RefreshedAt: now.Add(-10 * time.Minute)}).IsStale(now, ttl))
	assert.True(t, (&FeedKey{RefreshedAt: now.Add(-16 * time.Minute)}).IsStale(now, ttl))
}
