package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/tenantdb/pkg/jwt"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/ratelimiter"
	"github.com/dmitrymomot/tenantdb/pkg/sanitizer"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokensDisabled     = errors.New("token issuing is not configured")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// Hashed once per service and compared against on unknown emails, so a
// miss costs as much as a wrong password.
const dummyPassword = "tenantd-dummy-password"

// TokenIssuer signs access tokens. *jwt.Service implements it.
type TokenIssuer interface {
	Issue(subject string, extra jwt.Claims) (string, error)
}

// AttemptLimiter throttles login attempts per key. *ratelimiter.Bucket implements it.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimiter.Result, error)
	Reset(ctx context.Context, key string) error
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (in *RegisterInput) normalize() {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.DisplayName = sanitizer.Apply(in.DisplayName, sanitizer.RemoveControlChars, sanitizer.NormalizeWhitespace)
}

func (in RegisterInput) validate() error {
	return validator.Apply(
		validator.Required("email", in.Email),
		validator.Email("email", in.Email),
		validator.MaxLen("email", in.Email, 254),
		validator.MinLen("password", in.Password, 8),
		validator.MaxBytes("password", in.Password, maxPasswordBytes),
		validator.MaxLen("display_name", in.DisplayName, 100),
	)
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	Account     *Account `json:"account"`
}

// Service implements registration and login for the tenant resolved from
// the request scope.
type Service struct {
	uow        *uow.Manager
	issuer     TokenIssuer
	limiter    AttemptLimiter
	bcryptCost int
	compare    func(hash, password []byte) error
	log        *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// Option configures a Service.
type Option func(*Service)

// WithTokenIssuer enables Login.
func WithTokenIssuer(issuer TokenIssuer) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithAttemptLimiter throttles Login per tenant and email. A successful
// login clears the budget for that key.
func WithAttemptLimiter(l AttemptLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithBcryptCost overrides bcrypt.DefaultCost. Out of range values are ignored.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService returns an account service over manager.
func NewService(manager *uow.Manager, opts ...Option) *Service {
	s := &Service{
		uow:        manager,
		bcryptCost: bcrypt.DefaultCost,
		compare:    bcrypt.CompareHashAndPassword,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("identity"))
	return s
}

// Register validates in and creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	acc := &Account{
		ID:           uuid.New(),
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Version:      1,
	}

	_, err = uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Account](u)
		if err != nil {
			return err
		}

		existing, err := uow.FindAs[credentials](ctx, repo, uow.Where("email = ?", acc.Email))
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrEmailAlreadyExists
		}
		return repo.Add(acc)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account registered", logger.UserID(acc.ID.String()))
	return acc, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both fail with ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	email = sanitizer.NormalizeEmail(email)

	u, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Account](u)
	if err != nil {
		return nil, err
	}

	found, err := uow.FindAs[credentials](ctx, repo, uow.Where("email = ?", email))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		_ = s.compare(s.unknownAccountHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.compare(found[0].PasswordHash, []byte(password)); err != nil {
		s.log.WarnContext(ctx, "password mismatch", logger.UserID(found[0].ID.String()))
		return nil, ErrInvalidCredentials
	}

	return repo.GetByID(ctx, found[0].ID)
}

func (s *Service) unknownAccountHash() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), s.bcryptCost)
		if err != nil {
			s.log.Error("failed to hash dummy password", logger.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Login authenticates the caller and issues an access token bound to the
// tenant the credentials were checked against.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, error) {
	if s.issuer == nil {
		return nil, ErrTokensDisabled
	}

	id, err := tenant.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, ok := id.ID()
	if !ok {
		return nil, tenant.ErrTenantRequired
	}

	key := tenantID.String() + ":" + sanitizer.NormalizeEmail(email)
	if s.limiter != nil {
		res, err := s.limiter.Allow(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check login attempts: %w", err)
		}
		if !res.Allowed() {
			s.log.WarnContext(ctx, "login throttled", slog.Duration("retry_after", res.RetryAfter()))
			return nil, ErrTooManyAttempts
		}
	}

	acc, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.log.WarnContext(ctx, "failed to reset login attempts", logger.Error(err))
		}
	}

	token, err := s.issuer.Issue(acc.ID.String(), jwt.Claims{
		tenant.DefaultClaimName: tenantID.String(),
		"email":                 acc.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.InfoContext(ctx, "account logged in", logger.UserID(acc.ID.String()))
	return &Token{AccessToken: token, TokenType: "Bearer", Account: acc}, nil
}

// Get returns one account or uow.ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	u, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Account](u)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// ChangePassword replaces the password of account id after checking current.
// A change racing another write of the account fails with
// tenantdb.ErrPersistenceConflict.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if err := validator.Apply(
		validator.MinLen("password", next, 8),
		validator.MaxBytes("password", next, maxPasswordBytes),
	); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Account](u)
		if err != nil {
			return err
		}

		acc, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.compare(acc.PasswordHash, []byte(current)); err != nil {
			return ErrInvalidCredentials
		}

		acc.PasswordHash = hash
		return repo.Update(acc)
	})
	return err
}
