package user

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/sanitizer"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

var localePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

// UpdateInput replaces the editable fields of a profile. Empty locale and
// timezone fall back to "en" and "UTC".
type UpdateInput struct {
	FullName string `json:"full_name"`
	Locale   string `json:"locale"`
	Timezone string `json:"timezone"`
	Bio      string `json:"bio"`
}

func (in *UpdateInput) normalize() {
	in.FullName = sanitizer.Apply(in.FullName, sanitizer.RemoveControlChars, sanitizer.NormalizeWhitespace)
	in.Locale = sanitizer.Trim(in.Locale)
	in.Timezone = sanitizer.Trim(in.Timezone)
	in.Bio = sanitizer.Trim(in.Bio)
	if in.Locale == "" {
		in.Locale = "en"
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
}

func (in UpdateInput) validate() error {
	_, tzErr := time.LoadLocation(in.Timezone)
	return validator.Apply(
		validator.MaxLen("full_name", in.FullName, 200),
		validator.Matches("locale", in.Locale, localePattern, "must look like en or en-US"),
		validator.Rule{
			Check: func() bool { return tzErr == nil },
			Error: validator.ValidationError{Field: "timezone", Message: "unknown time zone", TranslationKey: "validation.timezone"},
		},
		validator.MaxLen("bio", in.Bio, 2000),
	)
}

// Service manages profiles of the tenant resolved from the request scope.
type Service struct {
	uow *uow.Manager
	log *slog.Logger
}

// NewService returns a profile service over manager.
func NewService(manager *uow.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{uow: manager, log: log.With(logger.Component("user"))}
}

// Get returns the profile of accountID. Accounts that never saved a profile
// get the defaults rather than uow.ErrNotFound.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	u, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Profile](u)
	if err != nil {
		return nil, err
	}

	p, err := repo.GetByID(ctx, accountID)
	if errors.Is(err, uow.ErrNotFound) {
		return &Profile{AccountID: accountID, Locale: "en", Timezone: "UTC"}, nil
	}
	return p, err
}

// Save creates or replaces the profile of accountID.
func (s *Service) Save(ctx context.Context, accountID uuid.UUID, in UpdateInput) (*Profile, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Profile{
		AccountID: accountID,
		FullName:  in.FullName,
		Locale:    in.Locale,
		Timezone:  in.Timezone,
		Bio:       in.Bio,
	}

	_, err := uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Profile](u)
		if err != nil {
			return err
		}

		_, err = repo.GetByID(ctx, accountID)
		switch {
		case errors.Is(err, uow.ErrNotFound):
			return repo.Add(p)
		case err != nil:
			return err
		default:
			return repo.Update(p)
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "profile saved", logger.UserID(accountID.String()))
	return p, nil
}

// ByLocale lists the stored profiles using locale.
func (s *Service) ByLocale(ctx context.Context, locale string) ([]Profile, error) {
	u, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Profile](u)
	if err != nil {
		return nil, err
	}
	return repo.Find(ctx, uow.Where("locale = ?", locale))
}

// Delete removes the stored profile of accountID, if any.
func (s *Service) Delete(ctx context.Context, accountID uuid.UUID) error {
	_, err := uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Profile](u)
		if err != nil {
			return err
		}

		p, err := repo.GetByID(ctx, accountID)
		if errors.Is(err, uow.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return repo.Remove(p)
	})
	return err
}
