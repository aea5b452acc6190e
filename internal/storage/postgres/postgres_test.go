package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog_service/internal/models"
	"blog_service/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)

	return NewWithDB(mock), mock
}

func TestSaveUser(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "alice", "hash").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
			},
			wantID: 1,
		},
		{
			name: "duplicate username or email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "alice", "hash").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: storage.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setupMock(mock)

			id, err := repo.SaveUser(context.Background(), "alice@example.com", "alice", []byte("hash"))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserByEmail(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "email", "username", "password_hash", "image_file"}).
					AddRow(int64(1), "alice@example.com", "alice", []byte("hash"), "default.jpg")
				mock.ExpectQuery(`SELECT id, email, username, password_hash, image_file`).
					WithArgs("alice@example.com").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, email, username, password_hash, image_file`).
					WithArgs("alice@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: storage.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setupMock(mock)

			user, err := repo.UserByEmail(context.Background(), "alice@example.com")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), user.ID)
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, []byte("hash"), user.PassHash)
				assert.Equal(t, "default.jpg", user.ImageFile)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUpdateUser_Vanished(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("a@example.com", "a", "hash", "default.jpg", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateUser(context.Background(), userFixture(5))
	require.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("a@example.com", "a", "hash", "default.jpg", int64(5)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	err := repo.UpdateUser(context.Background(), userFixture(5))
	require.ErrorIs(t, err, storage.ErrUserExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id, title, content, author_id, date_posted`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.PostByID(context.Background(), 7)
	require.ErrorIs(t, err, storage.ErrPostNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPosts_Pagination(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))

	rows := pgxmock.NewRows([]string{"id", "title", "content", "author_id", "date_posted"}).
		AddRow(int64(12), "newest", "c", int64(1), now.Add(time.Hour)).
		AddRow(int64(11), "older", "c", int64(2), now)
	mock.ExpectQuery(`SELECT id, title, content, author_id, date_posted`).
		WithArgs(5, 5).
		WillReturnRows(rows)

	posts, total, err := repo.Posts(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, posts, 2)
	assert.Equal(t, "newest", posts[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePost_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeletePost(context.Background(), 3)
	require.ErrorIs(t, err, storage.ErrPostNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, isUniqueViolation(errors.New("plain error")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.NotNullViolation}))
}

func userFixture(id int64) models.User {
	return models.User{
		ID:        id,
		Username:  "a",
		Email:     "a@example.com",
		PassHash:  []byte("hash"),
		ImageFile: "default.jpg",
	}
}
