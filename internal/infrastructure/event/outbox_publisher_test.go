package event

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := NewOutboxPublisher(NewLedgerSerializer(), 8)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(ctx, tx, cashRequested(), cashRequested())
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_PublishWithTx_EmptyEvents(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := NewOutboxPublisher(NewLedgerSerializer(), 0)

	require.NoError(t, publisher.PublishWithTx(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_RollbackDiscardsEvents(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := NewOutboxPublisher(NewLedgerSerializer(), 0)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	settleFailed := errors.New("settle failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := publisher.ForTx(tx).Record(ctx, cashRequested()); err != nil {
			return err
		}
		return settleFailed
	})

	assert.ErrorIs(t, err, settleFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxPublisher_SaveEvents_RejectsNonGormProvider(t *testing.T) {
	publisher := NewOutboxPublisher(NewLedgerSerializer(), 0)

	err := publisher.SaveEvents(context.Background(), "not a tx", cashRequested())
	assert.ErrorContains(t, err, "txProvider must be a *gorm.DB")

	assert.NoError(t, publisher.SaveEvents(context.Background(), "ignored"))
}

func TestOutboxPublisher_AppliesMaxRetries(t *testing.T) {
	db, mock := setupMockDB(t)
	publisher := NewOutboxPublisher(NewLedgerSerializer(), 8)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "outbox_events"`)).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), "CashEntryRequested", sqlmock.AnyArg(), "Debt",
			sqlmock.AnyArg(), shared.OutboxStatusPending, 0, 8,
			"", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, publisher.PublishWithTx(context.Background(), db, cashRequested()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
