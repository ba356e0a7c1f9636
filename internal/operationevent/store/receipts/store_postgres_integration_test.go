//go:build integration

package receipts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"opevent/internal/operationevent/models"
	"opevent/internal/operationevent/store/receipts"
	"opevent/pkg/platform/uow"
	"opevent/pkg/testutil/containers"
)

type PostgresReceiptsSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *receipts.PostgresStore
	runner   *uow.SQLRunner
}

func TestPostgresReceiptsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresReceiptsSuite))
}

func (s *PostgresReceiptsSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = receipts.NewPostgres(s.postgres.DB)
	s.runner = uow.NewSQLRunner(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresReceiptsSuite) SetupTest() {
	s.postgres.Exec(s.T(), `TRUNCATE signal_receipts`)
}

func (s *PostgresReceiptsSuite) TestRecordOutsideTransaction() {
	ctx := context.Background()
	s.Require().NoError(s.store.Record(ctx, receipts.Receipt{
		Signal:    models.SignalPostSave,
		Kind:      models.KindCourseEnrollment,
		RequestID: "req-1",
	}))

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(models.SignalPostSave, got[0].Signal)
	s.Equal(models.KindCourseEnrollment, got[0].Kind)
	s.Equal("req-1", got[0].RequestID)
}

func (s *PostgresReceiptsSuite) TestRecordJoinsTransaction() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Record(ctx, receipts.Receipt{Signal: models.SignalThreadCreated}))
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Empty(got, "rolled back receipt is gone")

	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.Record(ctx, receipts.Receipt{Signal: models.SignalThreadCreated})
	})
	s.Require().NoError(err)

	got, err = s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Len(got, 1)
}
