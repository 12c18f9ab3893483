// Package cart holds the visitor's in-progress selection of products and
// persists it through a Storage after every change.
package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// StorageKey is the key the line items are saved under.
const StorageKey = "cart"

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
	logger  *slog.Logger
}

// New loads the previously saved lines from storage. A missing entry starts
// an empty cart; an unreadable one is logged and also starts empty.
func New(storage Storage, logger *slog.Logger) *Cart {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cart{storage: storage, logger: logger, items: []Item{}}

	raw, err := storage.Get(StorageKey)
	switch {
	case errors.Is(err, ErrNotStored):
		return c
	case err != nil:
		logger.Error("error loading cart from storage", "err", err)
		return c
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Error("error loading cart from storage", "err", err)
		return c
	}
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// Add increases the quantity of the line for item.ProductID, or appends a
// new line. A quantity below 1 counts as 1.
func (c *Cart) Add(item Item, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantity += quantity
			c.persist()
			return
		}
	}

	item.Quantity = quantity
	c.items = append(c.items, item)
	c.persist()
}

func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(productID)
	c.persist()
}

// UpdateQuantity replaces the line's quantity; zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(productID)
		c.persist()
		return
	}

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = quantity
			break
		}
	}
	c.persist()
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = []Item{}
	c.persist()
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total.InexactFloat64()
}

// Items returns a copy of the lines in the order they were added.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Item{}, c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return c.Count() == 0
}

func (c *Cart) remove(productID string) {
	out := c.items[:0]
	for _, item := range c.items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	c.items = out
}

// persist must be called with mu held. Failures are logged only.
func (c *Cart) persist() {
	raw, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("error encoding cart", "err", err)
		return
	}
	if err := c.storage.Set(StorageKey, raw); err != nil {
		c.logger.Error("error saving cart to storage", "err", err)
	}
}
