package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink(t *testing.T) {
	s := New()
	ctx := context.Background()

	line := []byte(`{"event_type":"operation_event.user","message":{"id":1},"created":true}`)
	require.NoError(t, s.Append(ctx, line))
	line[0] = 'X'

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, `{"event_type":"operation_event.user","message":{"id":1},"created":true}`, s.Lines()[0], "append copies the line")

	events, err := s.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "operation_event.user", events[0].EventType)
	require.NotNil(t, events[0].Created)
	assert.True(t, *events[0].Created)
	assert.Nil(t, events[0].Deleted)

	boom := errors.New("boom")
	s.FailWith(boom)
	assert.ErrorIs(t, s.Append(ctx, []byte(`{}`)), boom)
	s.FailWith(nil)

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestEventsReportsUndecodableLines(t *testing.T) {
	s := New()
	require.NoError(t, s.Append(context.Background(), []byte(`not json`)))

	_, err := s.Events()
	assert.Error(t, err)
}
