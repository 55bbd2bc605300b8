package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/quicklogin/internal/model"
)

func newMockKV(t *testing.T) (*KVRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewKVRepository(db, "")
	repo.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return repo, mock
}

func TestKVRepository_GetValue(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    int64
		wantErr error
	}{
		{
			name: "found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(DefaultNamespace, "countdown_end_time").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1_700_000_060_000)))
			},
			want: 1_700_000_060_000,
		},
		{
			name: "missing key",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
					WithArgs(DefaultNamespace, "countdown_end_time").
					WillReturnRows(sqlmock.NewRows([]string{"value"}))
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockKV(t)
			tt.setup(mock)

			got, err := repo.GetValue(context.Background(), "countdown_end_time")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestKVRepository_GetValue_QueryError(t *testing.T) {
	repo, mock := newMockKV(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store")).
		WillReturnError(errors.New("database is locked"))

	_, err := repo.GetValue(context.Background(), "k")

	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to get value")
}

func TestKVRepository_SetValue(t *testing.T) {
	repo, mock := newMockKV(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs(DefaultNamespace, "sms_code_countdown", int64(1_700_000_060_000), int64(1_700_000_000_000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SetValue(context.Background(), "sms_code_countdown", 1_700_000_060_000)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_RemoveValue(t *testing.T) {
	repo, mock := newMockKV(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store")).
		WithArgs(DefaultNamespace, "countdown_end_time").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RemoveValue(context.Background(), "countdown_end_time"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepository_RemoveValue_Error(t *testing.T) {
	repo, mock := newMockKV(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store")).
		WillReturnError(errors.New("disk I/O error"))

	err := repo.RemoveValue(context.Background(), "countdown_end_time")

	assert.ErrorContains(t, err, "failed to remove value")
}

func TestOpen_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, t.TempDir()+"/data/quicklogin.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	kv := NewKVRepository(db, "device-a")
	other := NewKVRepository(db, "device-b")

	_, err = kv.GetValue(ctx, "countdown_end_time")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, kv.SetValue(ctx, "countdown_end_time", 10))
	require.NoError(t, kv.SetValue(ctx, "countdown_end_time", 20))

	got, err := kv.GetValue(ctx, "countdown_end_time")
	require.NoError(t, err)
	assert.Equal(t, int64(20), got)

	_, err = other.GetValue(ctx, "countdown_end_time")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, kv.RemoveValue(ctx, "countdown_end_time"))
	_, err = kv.GetValue(ctx, "countdown_end_time")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
