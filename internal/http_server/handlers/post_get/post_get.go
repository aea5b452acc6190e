package postGet

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"blog_service/internal/blog"
	resp "blog_service/internal/lib/api/response"
	sl "blog_service/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"author_id"`
	DatePosted time.Time `json:"date_posted"`
}

func New(
	log *slog.Logger,
	blogService *blog.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.postGet.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Post not found"))

			return
		}

		post, err := blogService.Get(r.Context(), postID)
		if err != nil {
			if errors.Is(err, blog.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Post not found"))

				return
			}

			log.Error("failed to get post", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			ID:         post.ID,
			Title:      post.Title,
			Content:    post.Content,
			AuthorID:   post.AuthorID,
			DatePosted: post.DatePosted,
		})
	}
}
