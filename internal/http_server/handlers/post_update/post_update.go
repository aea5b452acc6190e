package postUpdate

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
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content" validate:"required"`
}

type Response struct {
	resp.Response
	PostID int64 `json:"post_id,omitempty"`
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	sessions *session.Manager,
	blogService *blog.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.postUpdate.New"

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

		var req Request

		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		post, err := blogService.Update(ctx, user.ID, postID, req.Title, req.Content)
		if err != nil {
			switch {
			case errors.Is(err, blog.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Post not found"))
			case errors.Is(err, blog.ErrNotOwner):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("You can only update your own posts"))
			default:
				log.Error("failed to update post", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))
			}

			return
		}

		log.Info("post updated", slog.Int64("post_id", post.ID))

		render.JSON(w, r, Response{
			Response: resp.Success("Your post has been updated!"),
			PostID:   post.ID,
		})
	}
}
