package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"opevent/pkg/platform/circuit"
	"opevent/pkg/platform/opevent/mocks"
	"opevent/pkg/platform/opevent/sink/memory"
	"opevent/pkg/platform/sentinel"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSink_FailsFastWhileOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockSink(ctrl)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := circuit.New("kafka",
		circuit.WithFailureThreshold(2),
		circuit.WithSuccessThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	s := New(primary, b, WithLogger(quiet))
	ctx := context.Background()
	down := errors.New("broker down")

	primary.EXPECT().Append(gomock.Any(), gomock.Any()).Return(down).Times(2)

	err := s.Append(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, down)
	assert.NotErrorIs(t, err, sentinel.ErrUnavailable)

	err = s.Append(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)

	err = s.Append(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, sentinel.ErrUnavailable, "primary not called while cooling down")

	now = now.Add(time.Minute)
	primary.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, s.Append(ctx, []byte(`{}`)))
	assert.False(t, b.IsOpen())
}

func TestSink_UsesFallbackWhileOpen(t *testing.T) {
	primary := memory.New()
	primary.FailWith(errors.New("redis down"))
	fallback := memory.New()
	s := New(primary, circuit.New("redis", circuit.WithFailureThreshold(1)), WithFallback(fallback), WithLogger(quiet))

	require.NoError(t, s.Append(context.Background(), []byte(`{"n":1}`)))
	require.NoError(t, s.Append(context.Background(), []byte(`{"n":2}`)))

	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`}, fallback.Lines())
	assert.Zero(t, primary.Len())
}
