package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spendlens/spendlens/internal/tags"
	"github.com/stretchr/testify/require"
)

func newMockTagRepository(t *testing.T) (*TagRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WithArgs("tag_definitions").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo, err := NewTagRepository(db)
	require.NoError(t, err)
	return repo, mock
}

func definitionRowColumns() []string {
	return []string{"name", "conditions", "fingerprint", "updated_at"}
}

func TestTagRepository_Get(t *testing.T) {
	repo, mock := newMockTagRepository(t)
	updated := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetTagDefinition)).
		WithArgs("big").
		WillReturnRows(sqlmock.NewRows(definitionRowColumns()).
			AddRow("big", []byte(`{"amount":{"abs.greater":100.5}}`), "fp1", updated))

	def, err := repo.Get(context.Background(), "big")
	require.NoError(t, err)
	require.Equal(t, "big", def.Name)
	require.Equal(t, "fp1", def.Fingerprint)
	require.Equal(t, updated, def.UpdatedAt)
	require.Equal(t,
		map[string]any{"amount": map[string]any{"abs.greater": json.Number("100.5")}},
		def.Conditions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockTagRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(queryGetTagDefinition)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(definitionRowColumns()))

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, tags.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_List(t *testing.T) {
	repo, mock := newMockTagRepository(t)
	updated := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryListTagDefinitions)).
		WillReturnRows(sqlmock.NewRows(definitionRowColumns()).
			AddRow("a", []byte(`[{"tags":{"contains":"b"}}]`), "fp-a", updated).
			AddRow("b", []byte(`{"description":{"lower.contains":"bakery"}}`), "fp-b", updated))

	defs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)
	require.Equal(t, "a", defs[0].Name)
	require.IsType(t, []any{}, defs[0].Conditions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_Save(t *testing.T) {
	repo, mock := newMockTagRepository(t)
	now := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)

	def, err := tags.NewDefinition("big", map[string]any{"amount": map[string]any{"greater": 100}}, now)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(queryUpsertTagDefinition)).
		WithArgs("big", []byte(`{"amount":{"greater":100}}`), def.Fingerprint, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), def))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_Delete(t *testing.T) {
	repo, mock := newMockTagRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(queryDeleteTagDefinition)).
		WithArgs("big").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(queryDeleteTagDefinition)).
		WithArgs("big").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "big"))
	require.ErrorIs(t, repo.Delete(context.Background(), "big"), tags.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
