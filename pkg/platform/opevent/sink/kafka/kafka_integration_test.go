//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"opevent/pkg/platform/opevent"
	"opevent/pkg/platform/opevent/sink/kafka"
	"opevent/pkg/testutil/containers"
)

func TestSinkProducesKeyedRecords(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sink, err := kafka.New([]string{rp.Broker}, "operation-events-test")
	require.NoError(t, err)
	defer sink.Close()
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1), "existing topic is not an error")

	emitter := opevent.New(sink)
	require.NoError(t, emitter.Emit(ctx, "CourseGrade", map[string]any{"user_id": 42}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("operation-events-test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "operation_event.coursegrade", string(records[0].Key))
	assert.Contains(t, string(records[0].Value), `"user_id":42`)
}
