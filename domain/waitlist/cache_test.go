package waitlist

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/constants"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCountCache_NoopWithoutBackend(t *testing.T) {
	cache := NewCountCache(nil, 0, nil)

	cache.Set(context.Background(), 3)
	_, ok := cache.Get(context.Background())
	assert.False(t, ok)
	cache.Invalidate(context.Background())
}

func TestCountCache_RoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := NewMockKeyValueCache(ctrl)
	cache := NewCountCache(kv, 0, log.NewLoggerWithWriter(&bytes.Buffer{}))
	ctx := context.Background()

	gomock.InOrder(
		kv.EXPECT().Set(ctx, constants.WaitlistCountCacheKey, "9", constants.WaitlistCountCacheTTL).Return(nil),
		kv.EXPECT().Get(ctx, constants.WaitlistCountCacheKey).Return("9", nil),
		kv.EXPECT().Delete(ctx, constants.WaitlistCountCacheKey).Return(nil),
		kv.EXPECT().Get(ctx, constants.WaitlistCountCacheKey).Return("", nil),
	)

	cache.Set(ctx, 9)
	count, ok := cache.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(9), count)

	cache.Invalidate(ctx)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestCountCache_FailuresAreMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := NewMockKeyValueCache(ctrl)
	cache := NewCountCache(kv, 0, log.NewLoggerWithWriter(&bytes.Buffer{}))
	ctx := context.Background()

	kv.EXPECT().Get(ctx, constants.WaitlistCountCacheKey).Return("", errors.New("redis down"))
	kv.EXPECT().Get(ctx, constants.WaitlistCountCacheKey).Return("not-a-number", nil)
	kv.EXPECT().Delete(ctx, constants.WaitlistCountCacheKey).Return(errors.New("redis down"))

	_, ok := cache.Get(ctx)
	assert.False(t, ok)
	_, ok = cache.Get(ctx)
	assert.False(t, ok)
	cache.Invalidate(ctx)
}
