package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"blog_service/internal/auth"
	resp "blog_service/internal/lib/api/response"
	sl "blog_service/internal/lib/logger"
	"blog_service/internal/lib/picture"
	"blog_service/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const maxUploadSize = 5 << 20

type Request struct {
	Username string `validate:"required,max=20"`
	Email    string `validate:"required,email"`
}

type Response struct {
	resp.Response
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	ImageFile string `json:"image_file,omitempty"`
}

// NewShow returns the caller's own account record.
func NewShow(
	log *slog.Logger,
	sessions *session.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.account.NewShow"

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

		render.JSON(w, r, Response{
			Response:  resp.OK(),
			Username:  user.Username,
			Email:     user.Email,
			ImageFile: user.ImageFile,
		})
	}
}

// New updates the caller's username, email and optionally the profile
// picture. The body is a multipart form so the picture can ride along.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	sessions *session.Manager,
	authService *auth.Auth,
	uploadDir string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.account.New"

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

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			log.Error("Failed to parse multipart form", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		req := Request{
			Username: r.FormValue("username"),
			Email:    r.FormValue("email"),
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		var imageFile string

		file, header, err := r.FormFile("picture")
		if err == nil {
			defer file.Close()

			imageFile, err = picture.Save(file, header.Filename, uploadDir)
			if err != nil {
				log.Error("failed to save picture", sl.Err(err))

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Could not process the uploaded picture"))

				return
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			log.Error("failed to read picture field", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := authService.UpdateAccount(ctx, user.ID, req.Username, req.Email, imageFile)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("That username or email is already taken"))

				return
			}

			log.Error("failed to update account", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("account updated", slog.Int64("uid", updated.ID))

		render.JSON(w, r, Response{
			Response:  resp.Success("Your account has been updated"),
			Username:  updated.Username,
			Email:     updated.Email,
			ImageFile: updated.ImageFile,
		})
	}
}
