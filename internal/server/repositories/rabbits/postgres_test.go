package rabbits

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

var viewColumns = []string{"id", "name", "birthdate", "uid", "username", "email"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+rabbits\s*\(name,\s*birthdate,\s*user_id\)\s*SELECT\s+\$1,\s*\$2,\s*id\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$3\s*RETURNING\s+id,\s*created_at\s*$`
	birth := time.Date(2021, 4, 2, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ok with birthdate", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("Fluffy", birth, int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), created))

		got, err := repo.Create(context.Background(), &models.Rabbit{Name: "Fluffy", Birthdate: &birth, UserID: 1})
		require.NoError(t, err)

		want := &models.Rabbit{ID: 10, Name: "Fluffy", Birthdate: &birth, UserID: 1, CreatedAt: created}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("rabbit mismatch (-want +got):\n%s", diff)
		}
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ok without birthdate", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("Snow", nil, int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))

		got, err := repo.Create(context.Background(), &models.Rabbit{Name: "Snow", UserID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(11), got.ID)
		assert.Nil(t, got.Birthdate)
	})

	t.Run("unknown owner", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.Create(context.Background(), &models.Rabbit{Name: "Ghost", UserID: 99})
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

		_, err := repo.Create(context.Background(), &models.Rabbit{Name: "X", UserID: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db error: boom")
	})
}

func TestFindByID(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*name,\s*birthdate,\s*user_id,\s*created_at\s+FROM\s+rabbits\s+WHERE\s+id\s*=\s*\$1$`

	repo, mock := newRepoWithMock(t)
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "birthdate", "user_id", "created_at"}).
			AddRow(int64(1), "Fluffy", nil, int64(2), now))
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)

	r, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Fluffy", r.Name)
	assert.Nil(t, r.Birthdate)
	assert.Equal(t, int64(2), r.UserID)

	_, err = repo.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetView(t *testing.T) {
	q := `(?s)^SELECT\s+r\.id,.*FROM\s+rabbits\s+r\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*r\.user_id\s+WHERE\s+r\.id\s*=\s*\$1$`
	birth := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)

	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(q).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(viewColumns).AddRow(int64(5), "Hop", birth, int64(1), "alice", "a@x.io"))
	mock.ExpectQuery(q).WithArgs(int64(6)).WillReturnError(sql.ErrNoRows)

	got, err := repo.GetView(context.Background(), 5)
	require.NoError(t, err)

	want := &models.RabbitView{
		ID: 5, Name: "Hop", Birthdate: &birth,
		Owner: models.UserSummary{ID: 1, Username: "alice", Email: "a@x.io"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}

	_, err = repo.GetView(context.Background(), 6)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListViews(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`(?s)^SELECT\s+r\.id,.*ORDER\s+BY\s+r\.id$`).
		WillReturnRows(sqlmock.NewRows(viewColumns).
			AddRow(int64(1), "A", nil, int64(1), "alice", "a@x.io").
			AddRow(int64(2), "B", nil, int64(2), "bob", "b@x.io"))

	got, err := repo.ListViews(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[1].Owner.Username)
}

func TestUpdateAndDelete(t *testing.T) {
	uq := `(?s)^UPDATE\s+rabbits\s+SET\s+name\s*=\s*\$1,\s*birthdate\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3$`
	dq := `(?s)^DELETE\s+FROM\s+rabbits\s+WHERE\s+id\s*=\s*\$1$`

	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(uq).WithArgs("New", nil, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(uq).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(dq).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(dq).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), &models.Rabbit{ID: 1, Name: "New"}))
	assert.ErrorIs(t, repo.Update(context.Background(), &models.Rabbit{ID: 9, Name: "X"}), common.ErrorNotFound)
	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
