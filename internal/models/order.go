package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusPaid,
	StatusCancelled,
}

// RevenueStatuses are the statuses whose totals count as revenue.
var RevenueStatuses = []OrderStatus{
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusPaid,
}

var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status: %q", raw)
	}
	return status, nil
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) CountsAsRevenue() bool {
	for _, r := range RevenueStatuses {
		if s == r {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next follows s in the admin workflow.
// Paid can be reached from any state and re-setting the same status is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next || next == StatusPaid {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem captures the product name and unit price at checkout time.
type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Price       float64            `bson:"price" json:"price"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerPhone   string             `bson:"customerPhone" json:"customerPhone"`
	CustomerAddress string             `bson:"customerAddress" json:"customerAddress"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RevenuePoint is one bucket of a revenue series; ID is the period key
// ("2006-01-02", "2006-01" or "2006").
type RevenuePoint struct {
	ID    string  `bson:"_id" json:"_id"`
	Total float64 `bson:"total" json:"total"`
}

type Stats struct {
	CollectionsCount int64          `json:"collectionsCount"`
	ProductsCount    int64          `json:"productsCount"`
	OrdersCount      int64          `json:"ordersCount"`
	TotalRevenue     float64        `json:"totalRevenue"`
	RecentOrders     []Order        `json:"recentOrders"`
	RevenueByDay     []RevenuePoint `json:"revenueByDay"`
	RevenueByMonth   []RevenuePoint `json:"revenueByMonth"`
	RevenueByYear    []RevenuePoint `json:"revenueByYear"`
}
