package postDelete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"blog_service/internal/blog"
	resp "blog_service/internal/lib/api/response"
	sl "blog_service/internal/lib/logger"
	"blog_service/internal/session"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Redirect string `json:"redirect,omitempty"`
}

func New(
	log *slog.Logger,
	sessions *session.Manager,
	blogService *blog.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.postDelete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := sessions.CurrentUser(r.Context(), r)
		if err != nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Info("Please log in to access this page"))

			return
		}

		postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("Post not found"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := blogService.Delete(ctx, user.ID, postID); err != nil {
			switch {
			case errors.Is(err, blog.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Post not found"))
			case errors.Is(err, blog.ErrNotOwner):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("You can only delete your own posts"))
			default:
				log.Error("failed to delete post", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("post deleted", slog.Int64("post_id", postID))

		render.JSON(w, r, Response{
			Response: resp.Success("Your post has been deleted!"),
			Redirect: "/",
		})
	}
}
