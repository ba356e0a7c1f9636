package receipts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/uow"
)

func TestInMemoryStore_Record(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Record(ctx, Receipt{Signal: models.SignalPostSave, Kind: models.KindUser}))
	require.NoError(t, s.Record(ctx, Receipt{Signal: models.SignalThreadCreated}))

	got, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.SignalThreadCreated, got[0].Signal, "newest first")
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.False(t, got[1].ReceivedAt.IsZero())

	got, err = s.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInMemoryStore_FollowsUnitOfWork(t *testing.T) {
	s := NewInMemory()

	err := uow.Run(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Record(ctx, Receipt{Signal: models.SignalPostSave}))
		return errors.New("boom")
	})
	require.Error(t, err)

	got, _ := s.ListRecent(context.Background(), 10)
	assert.Empty(t, got)

	err = uow.Run(context.Background(), func(ctx context.Context) error {
		return s.Record(ctx, Receipt{Signal: models.SignalPostSave})
	})
	require.NoError(t, err)

	got, _ = s.ListRecent(context.Background(), 10)
	assert.Len(t, got, 1)
}
