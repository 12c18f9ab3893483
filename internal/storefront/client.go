// Package storefront is the customer-side client of the HTTP API: catalog
// browsing and checkout of a cart.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"bijouterie/internal/cart"
	"bijouterie/internal/checkout"
	"bijouterie/internal/idempotency"
	"bijouterie/internal/models"
)

var ErrEmptyCart = errors.New("cart is empty")

// APIError is a failure the server reported in its envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Product is a catalog product with its collection populated.
type Product struct {
	models.Product
	Collection *models.CollectionRef `json:"collection"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient talks to the API rooted at baseURL. A nil httpClient uses a
// client with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}
}

func (c *Client) Collections(ctx context.Context) ([]models.Collection, error) {
	var out []models.Collection
	err := c.do(ctx, http.MethodGet, "/api/collections", nil, &out)
	return out, err
}

func (c *Client) Collection(ctx context.Context, slug string) (models.Collection, error) {
	var out models.Collection
	err := c.do(ctx, http.MethodGet, "/api/collections/"+url.PathEscape(slug), nil, &out)
	return out, err
}

// Products lists products, restricted to one collection when collectionID
// is not empty.
func (c *Client) Products(ctx context.Context, collectionID string) ([]Product, error) {
	path := "/api/products"
	if collectionID != "" {
		path += "?collectionId=" + url.QueryEscape(collectionID)
	}
	var out []Product
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, slug string) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(slug), nil, &out)
	return out, err
}

type orderItemPayload struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type orderPayload struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	CustomerAddress string             `json:"customerAddress"`
	Items           []orderItemPayload `json:"items"`
	Total           float64            `json:"total"`
}

// Checkout submits the cart as an order under a fresh Idempotency-Key. The
// cart is cleared only when the server accepted the order; on any failure it
// is left as it was.
func (c *Client) Checkout(ctx context.Context, basket *cart.Cart, customer checkout.Customer) (models.Order, error) {
	if basket.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}
	items := basket.Items()

	payload := orderPayload{
		CustomerName:    customer.Name,
		CustomerPhone:   customer.Phone,
		CustomerAddress: customer.Address,
		Items:           make([]orderItemPayload, 0, len(items)),
		Total:           basket.Total(),
	}
	for _, item := range items {
		payload.Items = append(payload.Items, orderItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	var order models.Order
	header := http.Header{}
	header.Set(idempotency.Header, uuid.NewString())
	if err := c.send(ctx, http.MethodPost, "/api/orders", header, payload, &order); err != nil {
		return models.Order{}, err
	}

	basket.Clear()
	return order, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, nil, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, header http.Header, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("unexpected response (%s)", resp.Status)}
	}
	if !env.Success || resp.StatusCode >= http.StatusBadRequest {
		message := env.Error
		if message == "" {
			message = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
