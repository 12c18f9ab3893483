package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/checkout"
	"bijouterie/internal/models"
	"bijouterie/internal/repository"
)

type createOrderItemRequest struct {
	ProductID   string  `json:"productId" binding:"required"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity" binding:"required,gte=1"`
	Price       float64 `json:"price" binding:"gte=0"`
}

type createOrderRequest struct {
	CustomerName    string                   `json:"customerName" binding:"required"`
	CustomerPhone   string                   `json:"customerPhone" binding:"required"`
	CustomerAddress string                   `json:"customerAddress" binding:"required"`
	Items           []createOrderItemRequest `json:"items" binding:"required,dive"`
	Total           float64                  `json:"total" binding:"gte=0"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateOrder(service *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		checkoutReq := checkout.Request{
			Customer: checkout.Customer{
				Name:    req.CustomerName,
				Phone:   req.CustomerPhone,
				Address: req.CustomerAddress,
			},
			Items: make([]checkout.Item, 0, len(req.Items)),
			Total: req.Total,
		}
		for _, item := range req.Items {
			checkoutReq.Items = append(checkoutReq.Items, checkout.Item{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		order, err := service.PlaceOrder(ctx, checkoutReq)
		if err != nil {
			var (
				validationErr checkout.ValidationError
				notFoundErr   checkout.ProductNotFoundError
				stockErr      checkout.StockError
			)
			switch {
			case errors.As(err, &validationErr):
				respondWithError(c, http.StatusBadRequest, route, validationErr.Error())
			case errors.As(err, &notFoundErr):
				respondWithError(c, http.StatusNotFound, route, notFoundErr.Error())
			case errors.As(err, &stockErr):
				respondWithError(c, http.StatusBadRequest, route, stockErr.Error())
			default:
				respondInternal(c, route, "error creating order", err)
			}
			return
		}
		respondOK(c, http.StatusCreated, order)
	}
}

// ListOrders returns orders newest first. page and limit are optional; the
// unpaginated total is sent in X-Total-Count.
func ListOrders(orders repository.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		list, err := orders.List(ctx)
		if err != nil {
			respondInternal(c, route, "error fetching orders", err)
			return
		}

		c.Header("X-Total-Count", strconv.Itoa(len(list)))
		respondOK(c, http.StatusOK, paginate(list, page, limit))
	}
}

// UpdateOrderStatus sets an order's status. With strict set, moves outside
// the admin workflow are refused with 409.
func UpdateOrderStatus(orders repository.OrderStore, strict bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		if strict {
			current, err := orders.GetByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				respondWithError(c, http.StatusNotFound, route, "order not found")
				return
			}
			if err != nil {
				respondInternal(c, route, "error updating order", err)
				return
			}
			if !current.Status.CanTransitionTo(status) {
				respondWithError(c, http.StatusConflict, route,
					fmt.Sprintf("cannot change status from %s to %s", current.Status, status))
				return
			}
		}

		order, err := orders.UpdateStatus(ctx, id, status)
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error updating order", err)
			return
		}
		respondOK(c, http.StatusOK, order)
	}
}

func DeleteOrder(orders repository.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		err = orders.Delete(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error deleting order", err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{})
	}
}
