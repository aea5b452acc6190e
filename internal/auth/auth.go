package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "blog_service/internal/lib/logger"
	"blog_service/internal/lib/reset"
	"blog_service/internal/models"
	"blog_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Auth struct {
	log           *slog.Logger
	usrSaver      UserSaver
	usrProvider   UserProvider
	publisher     reset.Publisher
	secret        string
	resetTokenTTL time.Duration
	bcryptCost    int
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, username string, passHash []byte) (uid int64, err error)
	UpdateUser(ctx context.Context, user models.User) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	publisher reset.Publisher,
	secret string,
	resetTokenTTL time.Duration,
	bcryptCost int,
) *Auth {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Auth{
		log:           log,
		usrSaver:      userSaver,
		usrProvider:   userProvider,
		publisher:     publisher,
		secret:        secret,
		resetTokenTTL: resetTokenTTL,
		bcryptCost:    bcryptCost,
	}
}

// Register hashes the password and creates the identity. Duplicate
// username and duplicate email both surface as ErrUserExists, the
// caller cannot tell which field conflicted. The new user is not
// logged in.
func (a *Auth) Register(
	ctx context.Context,
	email string,
	username string,
	pass string,
) (int64, error) {
	const op = "auth.Register"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Info("Registering new user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), a.bcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, username, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("User already exists")

			return 0, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("Failed to save user", sl.Err(err))

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// Login checks the credentials and returns the identity they belong
// to. A missing account and a wrong password are indistinguishable to
// the caller.
func (a *Auth) Login(
	ctx context.Context,
	email, password string,
) (models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return models.User{}, ErrInvalidCredentials
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return user, nil
}

// RequestPasswordReset issues a reset token for the account behind
// email and queues the reset mail. An unknown email is a silent no-op
// so the outcome never reveals whether the address is registered.
func (a *Auth) RequestPasswordReset(
	ctx context.Context,
	email string,
	baseURL string,
) error {
	const op = "auth.RequestPasswordReset"

	log := a.log.With(
		slog.String("op", op),
	)

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("reset requested for unknown email")

			return nil
		}

		log.Error("failed to get user", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return reset.SendResetEmail(
		ctx,
		log,
		a.publisher,
		a.resetTokenTTL,
		a.secret,
		user.ID,
		baseURL,
		user.Email,
	)
}

// ResetPassword verifies the token and replaces the password hash of
// the user it embeds. Tokens are not single use: the same token keeps
// working until its own expiry, even after the password was changed.
func (a *Auth) ResetPassword(
	ctx context.Context,
	token string,
	newPassword string,
) error {
	const op = "auth.ResetPassword"

	log := a.log.With(
		slog.String("op", op),
	)

	userID, err := reset.ParseToken(token, a.secret)
	if err != nil {
		log.Warn("invalid reset token", sl.Err(err))

		return ErrInvalidToken
	}

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("token points to deleted user", slog.Int64("uid", userID))

			return ErrInvalidToken
		}

		log.Error("failed to load user", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.bcryptCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	user.PassHash = passHash

	if err := a.usrSaver.UpdateUser(ctx, user); err != nil {
		log.Error("failed to update user", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password updated", slog.Int64("uid", user.ID))

	return nil
}

// UpdateAccount changes the profile fields of an existing identity.
// An empty imageFile keeps the current picture. Concurrent updates of
// the same account are last-write-wins.
func (a *Auth) UpdateAccount(
	ctx context.Context,
	userID int64,
	username, email, imageFile string,
) (models.User, error) {
	const op = "auth.UpdateAccount"

	log := a.log.With(
		slog.String("op", op),
	)

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user.Username = username
	user.Email = email
	if imageFile != "" {
		user.ImageFile = imageFile
	}

	if err := a.usrSaver.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("username or email already taken")

			return models.User{}, ErrUserExists
		}

		log.Error("failed to update user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("account updated", slog.Int64("uid", user.ID))

	return user, nil
}
