package home

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"blog_service/internal/blog"
	resp "blog_service/internal/lib/api/response"
	sl "blog_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"author_id"`
	DatePosted time.Time `json:"date_posted"`
}

type Response struct {
	resp.Response
	Posts      []Post          `json:"posts"`
	Pagination blog.Pagination `json:"pagination"`
}

// New serves the paginated feed, newest posts first. The page is taken
// from the "page" query parameter and defaults to 1.
func New(
	log *slog.Logger,
	blogService *blog.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.home.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page := 1
		if raw := r.URL.Query().Get("page"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				page = parsed
			}
		}

		posts, pagination, err := blogService.List(r.Context(), page)
		if err != nil {
			log.Error("failed to list posts", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		out := make([]Post, 0, len(posts))
		for _, p := range posts {
			out = append(out, Post{
				ID:         p.ID,
				Title:      p.Title,
				Content:    p.Content,
				AuthorID:   p.AuthorID,
				DatePosted: p.DatePosted,
			})
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			Posts:      out,
			Pagination: pagination,
		})
	}
}
