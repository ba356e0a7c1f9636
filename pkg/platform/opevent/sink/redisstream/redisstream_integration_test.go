//go:build integration

package redisstream_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opevent/pkg/platform/opevent"
	"opevent/pkg/platform/opevent/sink/redisstream"
	"opevent/pkg/platform/uow"
	"opevent/pkg/testutil/containers"
)

func TestSinkAppendsStreamEntries(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	sink := redisstream.New(rc.Client, redisstream.WithStream("test_events"), redisstream.WithMaxLen(1000))
	emitter := opevent.New(sink)

	err := uow.Run(ctx, func(ctx context.Context) error {
		if err := emitter.Emit(ctx, "User", map[string]any{"id": 1}, opevent.WithCreated(true)); err != nil {
			return err
		}
		n, err := rc.Client.XLen(ctx, "test_events").Result()
		require.NoError(t, err)
		assert.Zero(t, n, "nothing is written before commit")
		return nil
	})
	require.NoError(t, err)

	msgs, err := rc.Client.XRange(ctx, "test_events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "operation_event.user", msgs[0].Values["event_type"])
	assert.Contains(t, msgs[0].Values["payload"], `"message":{"id":1}`)
}
