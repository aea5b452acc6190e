package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "blog_service/internal/lib/logger"
	"blog_service/internal/models"
	"blog_service/internal/storage"
)

var (
	ErrNotFound = errors.New("post not found")
	ErrNotOwner = errors.New("post belongs to another user")
)

// PerPage is how many posts a single page of the feed holds.
const PerPage = 5

type PostStore interface {
	SavePost(ctx context.Context, authorID int64, title, content string) (models.Post, error)
	PostByID(ctx context.Context, id int64) (models.Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) error
	DeletePost(ctx context.Context, id int64) error
	Posts(ctx context.Context, page, perPage int) ([]models.Post, int, error)
}

type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type Service struct {
	log   *slog.Logger
	store PostStore
}

func New(log *slog.Logger, store PostStore) *Service {
	return &Service{
		log:   log,
		store: store,
	}
}

func (s *Service) Create(ctx context.Context, authorID int64, title, content string) (models.Post, error) {
	const op = "blog.Create"

	log := s.log.With(slog.String("op", op))

	post, err := s.store.SavePost(ctx, authorID, title, content)
	if err != nil {
		log.Error("failed to save post", sl.Err(err))

		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post created", slog.Int64("post_id", post.ID))

	return post, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Post, error) {
	const op = "blog.Get"

	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Post{}, ErrNotFound
		}

		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// Update rewrites title and content of a post. Only the author may
// update it.
func (s *Service) Update(ctx context.Context, userID, id int64, title, content string) (models.Post, error) {
	const op = "blog.Update"

	log := s.log.With(slog.String("op", op))

	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Post{}, ErrNotFound
		}

		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	if post.AuthorID != userID {
		log.Warn("update rejected, not the author",
			slog.Int64("post_id", id),
			slog.Int64("uid", userID),
		)

		return models.Post{}, ErrNotOwner
	}

	if err := s.store.UpdatePost(ctx, id, title, content); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Post{}, ErrNotFound
		}

		log.Error("failed to update post", sl.Err(err))

		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	post.Title = title
	post.Content = content

	return post, nil
}

// Delete removes a post. Only the author may delete it.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	const op = "blog.Delete"

	log := s.log.With(slog.String("op", op))

	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if post.AuthorID != userID {
		log.Warn("delete rejected, not the author",
			slog.Int64("post_id", id),
			slog.Int64("uid", userID),
		)

		return ErrNotOwner
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return ErrNotFound
		}

		log.Error("failed to delete post", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("post deleted", slog.Int64("post_id", id))

	return nil
}

// List returns one page of the feed, newest first. Pages start at 1,
// anything below is clamped.
func (s *Service) List(ctx context.Context, page int) ([]models.Post, Pagination, error) {
	const op = "blog.List"

	if page < 1 {
		page = 1
	}

	posts, total, err := s.store.Posts(ctx, page, PerPage)
	if err != nil {
		s.log.Error("failed to list posts", slog.String("op", op), sl.Err(err))

		return nil, Pagination{}, fmt.Errorf("%s: %w", op, err)
	}

	totalPages := (total + PerPage - 1) / PerPage
	if totalPages == 0 {
		totalPages = 1
	}

	return posts, Pagination{
		Page:       page,
		PerPage:    PerPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
