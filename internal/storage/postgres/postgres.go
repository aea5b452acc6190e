package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog_service/internal/config"
	"blog_service/internal/models"
	"blog_service/internal/storage"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the slice of pgxpool.Pool the repository actually uses. Tests
// substitute a pgxmock pool for it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db   DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*Repo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &Repo{db: pool, pool: pool}, nil
}

// NewWithDB wires the repository over an arbitrary DB, used by tests.
func NewWithDB(db DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) SaveUser(ctx context.Context, email, username string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, email, username, string(passHash)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, image_file
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT id, email, username, password_hash, image_file
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// UpdateUser persists every mutable field of user. Concurrent updates
// to the same identity are not coordinated, the last write wins.
func (r *Repo) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.postgres.UpdateUser"

	query := `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, image_file = $4
		WHERE id = $5;
	`

	tag, err := r.db.Exec(ctx, query,
		user.Email,
		user.Username,
		string(user.PassHash),
		user.ImageFile,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func (r *Repo) SavePost(ctx context.Context, authorID int64, title, content string) (models.Post, error) {
	const op = "storage.postgres.SavePost"

	query := `
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, date_posted;
	`

	post := models.Post{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}

	err := r.db.QueryRow(ctx, query, title, content, authorID).Scan(&post.ID, &post.DatePosted)
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: failed to save post: %w", op, err)
	}

	return post, nil
}

func (r *Repo) PostByID(ctx context.Context, id int64) (models.Post, error) {
	query := `
		SELECT id, title, content, author_id, date_posted
		FROM posts
		WHERE id = $1;
	`

	row := r.db.QueryRow(ctx, query, id)

	var p models.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.AuthorID,
		&p.DatePosted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrPostNotFound
		}

		return models.Post{}, err
	}

	return p, nil
}

func (r *Repo) UpdatePost(ctx context.Context, id int64, title, content string) error {
	const op = "storage.postgres.UpdatePost"

	query := `UPDATE posts SET title = $1, content = $2 WHERE id = $3;`

	tag, err := r.db.Exec(ctx, query, title, content, id)
	if err != nil {
		return fmt.Errorf("%s: failed to update post: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

func (r *Repo) DeletePost(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeletePost"

	query := `DELETE FROM posts WHERE id = $1;`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete post: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

// Posts returns one page of posts, newest first, along with the total
// number of posts across all pages.
func (r *Repo) Posts(ctx context.Context, page, perPage int) ([]models.Post, int, error) {
	const op = "storage.postgres.Posts"

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: failed to count posts: %w", op, err)
	}

	query := `
		SELECT id, title, content, author_id, date_posted
		FROM posts
		ORDER BY date_posted DESC, id DESC
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.db.Query(ctx, query, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to query posts: %w", op, err)
	}
	defer rows.Close()

	var posts []models.Post

	for rows.Next() {
		var p models.Post

		err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.DatePosted)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: failed to scan post: %w", op, err)
		}

		posts = append(posts, p)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return posts, total, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Repo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PassHash,
		&u.ImageFile,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
