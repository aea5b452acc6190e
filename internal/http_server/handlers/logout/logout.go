package logout

import (
	"log/slog"
	"net/http"

	resp "blog_service/internal/lib/api/response"
	"blog_service/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Redirect string `json:"redirect,omitempty"`
}

// New destroys the caller's session unconditionally. Logging out
// without a session is a no-op and still succeeds.
func New(
	log *slog.Logger,
	sessions *session.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessions.Logout(w)

		log.Info("user logged out")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Redirect: "/",
		})
	}
}
