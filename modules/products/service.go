package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/sanitizer"
	"github.com/dmitrymomot/tenantdb/pkg/uow"
	"github.com/dmitrymomot/tenantdb/pkg/validator"
)

// ErrInsufficientStock is returned when a stock adjustment would go below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

var skuPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// CreateInput describes a new product.
type CreateInput struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

func (in *CreateInput) normalize() {
	in.SKU = sanitizer.ToUpper(in.SKU)
	in.Name = sanitizer.Apply(in.Name, sanitizer.RemoveControlChars, sanitizer.NormalizeWhitespace)
}

func (in CreateInput) validate() error {
	return validator.Apply(
		validator.Required("sku", in.SKU),
		validator.MaxLen("sku", in.SKU, 64),
		validator.Matches("sku", in.SKU, skuPattern, "must contain upper-case letters, digits and dashes"),
		validator.Required("name", in.Name),
		validator.MaxLen("name", in.Name, 200),
		validator.NonNegative("price_cents", in.PriceCents),
		validator.NonNegative("stock", in.Stock),
	)
}

// Service implements the product use cases for the tenant resolved from
// the request scope.
type Service struct {
	uow *uow.Manager
	log *slog.Logger
}

// NewService returns a product service over manager.
func NewService(manager *uow.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		uow: manager,
		log: log.With(logger.Component("products")),
	}
}

// view runs fn against a read-only unit of work.
func (s *Service) view(ctx context.Context, fn func(repo *uow.Repository[Product]) error) error {
	u, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer u.Dispose()

	repo, err := uow.Repo[Product](u)
	if err != nil {
		return err
	}
	return fn(repo)
}

// List returns all products ordered by id.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var out []Product
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = repo.GetAll(ctx)
		return err
	})
	return out, err
}

// LowStock returns products with fewer than threshold units in stock.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	var out []Product
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = repo.Find(ctx, uow.Where("stock < ?", threshold))
		return err
	})
	return out, err
}

// BySKUs returns the products whose SKU is in skus.
func (s *Service) BySKUs(ctx context.Context, skus []string) ([]Product, error) {
	if len(skus) == 0 {
		return []Product{}, nil
	}
	var out []Product
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = repo.Find(ctx, uow.Where("sku IN (?)", skus))
		return err
	})
	return out, err
}

// Get returns one product or uow.ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	var out *Product
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = repo.GetByID(ctx, id)
		return err
	})
	return out, err
}

// Summary returns the id and name of one product, reading only those columns.
func (s *Service) Summary(ctx context.Context, id uuid.UUID) (*Summary, error) {
	var out *Summary
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = uow.GetByIDAs[Summary](ctx, repo, id)
		return err
	})
	return out, err
}

// Summaries lists the id and name of every product.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.view(ctx, func(repo *uow.Repository[Product]) (err error) {
		out, err = uow.GetAllAs[Summary](ctx, repo)
		return err
	})
	return out, err
}

// Create normalizes and validates in, then stores a new product. A duplicate SKU fails with
// tenantdb.ErrPersistenceConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		ID:         uuid.New(),
		SKU:        in.SKU,
		Name:       in.Name,
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
		Version:    1,
	}

	_, err := uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Product](u)
		if err != nil {
			return err
		}
		return repo.Add(p)
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "product created", slog.String("product_id", p.ID.String()), slog.String("sku", p.SKU))
	return p, nil
}

// AdjustStock adds delta (possibly negative) to the stock of a product. An
// adjustment racing another write of the same product fails with
// tenantdb.ErrPersistenceConflict instead of overwriting it.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	var out *Product
	_, err := uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Product](u)
		if err != nil {
			return err
		}

		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Stock+delta < 0 {
			return fmt.Errorf("%w: %d in stock, %d requested", ErrInsufficientStock, p.Stock, -delta)
		}

		p.Stock += delta
		out = p
		return repo.Update(p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a product. Removing a missing product fails with uow.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := uow.Run(ctx, s.uow, func(ctx context.Context, u *uow.UnitOfWork) error {
		repo, err := uow.Repo[Product](u)
		if err != nil {
			return err
		}

		p, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return repo.Remove(p)
	})
	return err
}
