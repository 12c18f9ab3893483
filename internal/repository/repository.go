// Package repository defines the persistence ports used by the handlers and
// the checkout service, with a MongoDB and an in-memory implementation.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CollectionUpdate struct {
	Name        *string
	Description *string
	Image       *string
	Slug        *string
}

type CollectionStore interface {
	List(ctx context.Context) ([]models.Collection, error)
	GetBySlug(ctx context.Context, slug string) (models.Collection, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Collection, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error)
	Create(ctx context.Context, collection *models.Collection) error
	Update(ctx context.Context, slug string, update CollectionUpdate) (models.Collection, error)
	Delete(ctx context.Context, slug string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

type ProductFilter struct {
	CollectionID *primitive.ObjectID
}

type ProductUpdate struct {
	Name         *string
	Description  *string
	Price        *float64
	Quantity     *int
	Images       *[]string
	CollectionID *primitive.ObjectID
	Slug         *string
}

type ProductStore interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetBySlug(ctx context.Context, slug string) (models.Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, slug string, update ProductUpdate) (models.Product, error)
	Delete(ctx context.Context, slug string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	// DecrementStock removes quantity units only if at least that many are
	// available, returning ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// Period selects the bucket size of a revenue series.
type Period int

const (
	PeriodDay Period = iota
	PeriodMonth
	PeriodYear
)

// Layout is the time layout of the period's bucket key.
func (p Period) Layout() string {
	switch p {
	case PeriodMonth:
		return "2006-01"
	case PeriodYear:
		return "2006"
	default:
		return "2006-01-02"
	}
}

// mongoFormat is the $dateToString equivalent of Layout.
func (p Period) mongoFormat() string {
	switch p {
	case PeriodMonth:
		return "%Y-%m"
	case PeriodYear:
		return "%Y"
	default:
		return "%Y-%m-%d"
	}
}

type OrderStore interface {
	// List returns orders newest first.
	List(ctx context.Context) ([]models.Order, error)
	Recent(ctx context.Context, limit int64) ([]models.Order, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context, statuses []models.OrderStatus) (float64, error)
	RevenueSeries(ctx context.Context, statuses []models.OrderStatus, since time.Time, period Period) ([]models.RevenuePoint, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, mustChange bool) error
}

// Transactor runs fn as one unit. Atomic reports whether a failure inside fn
// rolls back the writes fn already made; callers compensate when it does not.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

type Store struct {
	Driver      string
	Collections CollectionStore
	Products    ProductStore
	Orders      OrderStore
	Users       UserStore
	Tx          Transactor
	Ping        func(ctx context.Context) error
}
