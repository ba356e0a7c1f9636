package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackgroundContextCarriesNoRequest(t *testing.T) {
	ctx := context.Background()

	assert.False(t, HasRequest(ctx))
	_, ok := ClientIP(ctx)
	assert.False(t, ok)
	_, ok = UserAgent(ctx)
	assert.False(t, ok)
	_, ok = ActorID(ctx)
	assert.False(t, ok)
	assert.Empty(t, RequestID(ctx))
}

func TestRequestValues(t *testing.T) {
	ctx := WithRequest(context.Background())
	ctx = WithClientMetadata(ctx, "192.0.2.1", "")
	ctx = WithActorID(ctx, "42")
	ctx = WithRequestID(ctx, "req-1")

	assert.True(t, HasRequest(ctx))
	ip, ok := ClientIP(ctx)
	assert.True(t, ok)
	assert.Equal(t, "192.0.2.1", ip)
	_, ok = UserAgent(ctx)
	assert.False(t, ok, "empty user agent reads as absent")
	actor, ok := ActorID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "42", actor)
	assert.Equal(t, "req-1", RequestID(ctx))
}
