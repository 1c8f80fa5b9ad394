package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docregistry/internal/model"
	"docregistry/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reservationRows = []string{
	"id", "document_type", "reference_id", "notes", "reserved_by",
	"reserved_at", "is_used", "used_at", "used_document_id",
}

func newReservation() *model.Reservation {
	return &model.Reservation{
		ID:          "f1c0a1de-0000-4000-8000-000000000001",
		Type:        model.DocumentTypeInbound,
		ReferenceID: 15,
		Notes:       "annual report",
		ReservedBy:  "user-1",
		ReservedAt:  time.Now().UTC(),
	}
}

func TestReferencePostgres_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReferencePostgres(db)
	ctx := context.Background()

	t.Run("locks the sequence row, then checks and reserves", func(t *testing.T) {
		res := newReservation()

		// The sequence UPDATE must come first: its row lock serializes
		// Reserve against concurrent allocations of the same id.
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO reference_reservations").
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				res.ID, res.Type, res.ReferenceID, res.Notes, res.ReservedBy,
				res.ReservedAt, false, nil, nil,
			))
		mock.ExpectCommit()

		stored, err := repo.Reserve(ctx, res)

		assert.NoError(t, err)
		assert.Equal(t, int64(15), stored.ReferenceID)
		assert.False(t, stored.IsUsed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("id held by a document, soft-deleted included", func(t *testing.T) {
		res := newReservation()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.Reserve(ctx, res)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate reservation hits the partial unique index", func(t *testing.T) {
		res := newReservation()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(model.DocumentTypeInbound, int64(15)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO reference_reservations").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_reference_reservations_active"})
		mock.ExpectRollback()

		_, err := repo.Reserve(ctx, res)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReferencePostgres_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReferencePostgres(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM reference_reservations WHERE NOT is_used").
		WillReturnRows(sqlmock.NewRows(reservationRows).
			AddRow("id-1", "inbound", 15, "annual report", "user-1", now, false, nil, nil).
			AddRow("id-2", "outbound", 3, "", "user-2", now, false, nil, nil))

	items, err := repo.ListActive(context.Background())

	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(15), items[0].ReferenceID)
	assert.Equal(t, model.DocumentTypeOutbound, items[1].Type)
	assert.Nil(t, items[1].UsedAt)
}

func TestReferencePostgres_IsAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReferencePostgres(db)
	ctx := context.Background()

	t.Run("free", func(t *testing.T) {
		mock.ExpectQuery("SELECT NOT EXISTS").
			WithArgs(model.DocumentTypeInbound, int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(true))

		free, err := repo.IsAvailable(ctx, model.DocumentTypeInbound, 42)
		assert.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("taken", func(t *testing.T) {
		mock.ExpectQuery("SELECT NOT EXISTS").
			WithArgs(model.DocumentTypeInbound, int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(false))

		free, err := repo.IsAvailable(ctx, model.DocumentTypeInbound, 7)
		assert.NoError(t, err)
		assert.False(t, free)
	})
}

func TestReferencePostgres_ResetSequences(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReferencePostgres(db)
	ctx := context.Background()

	t.Run("rewinds all named sequences in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences SET next_value = 1").
			WithArgs(model.DocumentTypeInbound).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE reference_sequences SET next_value = 1").
			WithArgs(model.DocumentTypeOutbound).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ResetSequences(ctx, []model.DocumentType{model.DocumentTypeInbound, model.DocumentTypeOutbound})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure mid-list resets nothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences SET next_value = 1").
			WithArgs(model.DocumentTypeInbound).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE reference_sequences SET next_value = 1").
			WithArgs(model.DocumentTypeOutbound).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.ResetSequences(ctx, []model.DocumentType{model.DocumentTypeInbound, model.DocumentTypeOutbound})

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown sequence rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reference_sequences SET next_value = 1").
			WithArgs(model.DocumentType("memo")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ResetSequences(ctx, []model.DocumentType{model.DocumentType("memo")})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestAccessLogPostgres_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAccessLogPostgres(db)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO document_access_log").
		WithArgs(model.DocumentTypeInbound, int64(7), "user-1", model.AccessActionDownload, "req-1", now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Record(context.Background(), &model.AccessLogEntry{
		Type:        model.DocumentTypeInbound,
		ReferenceID: 7,
		ActorID:     "user-1",
		Action:      model.AccessActionDownload,
		RequestID:   "req-1",
		CreatedAt:   now,
	})
	assert.NoError(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
