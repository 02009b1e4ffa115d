package identity

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/handler"
	"github.com/dmitrymomot/tenantdb/pkg/binder"
	"github.com/dmitrymomot/tenantdb/pkg/jwt"
)

// ErrorMappings are the module errors the HTTP layer should translate.
var ErrorMappings = []handler.ErrorMapping{
	{Target: ErrEmailAlreadyExists, Response: handler.NewHTTPError(http.StatusConflict, "email_taken")},
	{Target: ErrInvalidCredentials, Response: handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials")},
	{Target: ErrTooManyAttempts, Response: handler.NewHTTPError(http.StatusTooManyRequests, "too_many_attempts")},
	{Target: ErrTokensDisabled, Response: handler.NewHTTPError(http.StatusNotImplemented, "tokens_disabled")},
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

// CurrentAccountID returns the account id of the authenticated caller or
// handler.ErrUnauthorized.
func CurrentAccountID(ctx context.Context) (uuid.UUID, error) {
	sub, ok := jwt.Subject(ctx)
	if !ok {
		return uuid.Nil, handler.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, handler.ErrUnauthorized
	}
	return id, nil
}

// Router mounts the account endpoints:
//
//	POST /register     create an account in the resolved tenant
//	POST /login        exchange credentials for a bearer token
//	GET  /me           account of the bearer token
//	PUT  /me/password  change password
//
// Register and login are anonymous, so the tenant comes from the header or
// query parameter. The /me endpoints rely on the token's tenant claim.
func Router(svc *Service, onError handler.ErrorHandler[handler.Context]) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", handler.Wrap(func(ctx handler.Context, req RegisterInput) handler.Response {
		acc, err := svc.Register(ctx, req)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(acc, handler.WithJSONStatus(http.StatusCreated))
	},
		handler.WithBinders[handler.Context, RegisterInput](binder.JSON()),
		handler.WithErrorHandler[handler.Context, RegisterInput](onError),
	))

	r.Post("/login", handler.Wrap(func(ctx handler.Context, req loginRequest) handler.Response {
		token, err := svc.Login(ctx, req.Email, req.Password)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(token)
	},
		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, loginRequest](onError),
	))

	r.Get("/me", handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		id, err := CurrentAccountID(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		acc, err := svc.Get(ctx, id)
		if err != nil {
			return handler.Fail(err)
		}
		return handler.JSON(acc)
	},
		handler.WithErrorHandler[handler.Context, struct{}](onError),
	))

	r.Put("/me/password", handler.Wrap(func(ctx handler.Context, req changePasswordRequest) handler.Response {
		id, err := CurrentAccountID(ctx)
		if err != nil {
			return handler.Fail(err)
		}
		if err := svc.ChangePassword(ctx, id, req.Current, req.New); err != nil {
			return handler.Fail(err)
		}
		return handler.Empty()
	},
		handler.WithBinders[handler.Context, changePasswordRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, changePasswordRequest](onError),
	))

	return r
}
