// Package checkout turns a cart snapshot into a persisted order while
// decrementing product stock as a single unit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/models"
	"bijouterie/internal/repository"
)

// TotalPolicy decides where captured prices and the order total come from.
type TotalPolicy string

const (
	// Recompute captures name and price from the product documents and
	// computes the total server side.
	Recompute TotalPolicy = "recompute"
	// Trust persists the names, prices and total the client sent.
	Trust TotalPolicy = "trust"
)

type Customer struct {
	Name    string
	Phone   string
	Address string
}

type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

type Request struct {
	Customer Customer
	Items    []Item
	Total    float64
}

type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

type ProductNotFoundError struct {
	ProductID primitive.ObjectID
	Name      string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.Name)
}

type StockError struct {
	ProductID primitive.ObjectID
	Name      string
	Available int
	Requested int
}

func (e StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

type Service struct {
	products repository.ProductStore
	orders   repository.OrderStore
	tx       repository.Transactor
	policy   TotalPolicy
}

func NewService(store repository.Store, policy TotalPolicy) *Service {
	if policy != Trust {
		policy = Recompute
	}
	return &Service{
		products: store.Products,
		orders:   store.Orders,
		tx:       store.Tx,
		policy:   policy,
	}
}

type parsedItem struct {
	id primitive.ObjectID
	Item
}

type stockChange struct {
	id       primitive.ObjectID
	quantity int
}

// PlaceOrder checks and decrements stock for every item in order, then
// inserts the order as pending. Either everything is applied or nothing is:
// inside a transaction when the store supports it, otherwise by re-adding
// the stock already taken.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (models.Order, error) {
	items, err := validate(req)
	if err != nil {
		return models.Order{}, err
	}

	var (
		order   models.Order
		applied []stockChange
	)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// The driver may retry the whole function on transient errors.
		applied = applied[:0]
		order = models.Order{
			CustomerName:    strings.TrimSpace(req.Customer.Name),
			CustomerPhone:   strings.TrimSpace(req.Customer.Phone),
			CustomerAddress: strings.TrimSpace(req.Customer.Address),
			Items:           make([]models.OrderItem, 0, len(items)),
			Status:          models.StatusPending,
		}
		total := decimal.Zero

		for _, item := range items {
			product, err := s.products.GetByID(ctx, item.id)
			if errors.Is(err, repository.ErrNotFound) {
				return ProductNotFoundError{ProductID: item.id, Name: displayName(item)}
			}
			if err != nil {
				return err
			}

			if product.Quantity < item.Quantity {
				return StockError{
					ProductID: item.id,
					Name:      displayName(item),
					Available: product.Quantity,
					Requested: item.Quantity,
				}
			}

			if err := s.products.DecrementStock(ctx, item.id, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return StockError{ProductID: item.id, Name: displayName(item), Available: product.Quantity, Requested: item.Quantity}
				}
				if errors.Is(err, repository.ErrNotFound) {
					return ProductNotFoundError{ProductID: item.id, Name: displayName(item)}
				}
				return err
			}
			applied = append(applied, stockChange{id: item.id, quantity: item.Quantity})

			captured := models.OrderItem{
				ProductID:   item.id,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
			}
			if s.policy == Trust {
				captured.Price = item.Price
				if name := strings.TrimSpace(item.ProductName); name != "" {
					captured.ProductName = name
				}
			}
			order.Items = append(order.Items, captured)
			total = total.Add(decimal.NewFromFloat(captured.Price).Mul(decimal.NewFromInt(int64(captured.Quantity))))
		}

		if s.policy == Trust {
			order.Total = req.Total
		} else {
			order.Total = total.InexactFloat64()
		}

		return s.orders.Create(ctx, &order)
	})
	if err != nil {
		if !s.tx.Atomic() {
			s.compensate(ctx, applied)
		}
		return models.Order{}, err
	}

	slog.Info("order placed", "orderId", order.ID.Hex(), "items", len(order.Items), "total", order.Total)
	return order, nil
}

// compensate puts back the stock taken by a failed non-transactional checkout.
func (s *Service) compensate(ctx context.Context, applied []stockChange) {
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		change := applied[i]
		if err := s.products.IncrementStock(ctx, change.id, change.quantity); err != nil {
			slog.Error("stock compensation failed",
				"productId", change.id.Hex(),
				"quantity", change.quantity,
				"err", err,
			)
		}
	}
}

func validate(req Request) ([]parsedItem, error) {
	switch {
	case strings.TrimSpace(req.Customer.Name) == "":
		return nil, ValidationError{Message: "customerName is required"}
	case strings.TrimSpace(req.Customer.Phone) == "":
		return nil, ValidationError{Message: "customerPhone is required"}
	case strings.TrimSpace(req.Customer.Address) == "":
		return nil, ValidationError{Message: "customerAddress is required"}
	case len(req.Items) == 0:
		return nil, ValidationError{Message: "the order must contain at least one product"}
	case req.Total < 0:
		return nil, ValidationError{Message: "total must be zero or greater"}
	}

	items := make([]parsedItem, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return nil, ValidationError{Message: "invalid productId"}
		}
		if item.Quantity < 1 {
			return nil, ValidationError{Message: "quantity must be at least 1"}
		}
		if item.Price < 0 {
			return nil, ValidationError{Message: "price must be zero or greater"}
		}
		items = append(items, parsedItem{id: id, Item: item})
	}
	return items, nil
}

func displayName(item parsedItem) string {
	if name := strings.TrimSpace(item.ProductName); name != "" {
		return name
	}
	return item.id.Hex()
}
