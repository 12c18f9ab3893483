package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bijouterie/internal/models"
	"bijouterie/internal/repository"
	"bijouterie/internal/slug"
)

type createProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Price        *float64 `json:"price" binding:"required,gte=0"`
	Quantity     *int     `json:"quantity" binding:"omitempty,gte=0"`
	Images       []string `json:"images"`
	CollectionID string   `json:"collectionId" binding:"required"`
}

type updateProductRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Price        *float64  `json:"price" binding:"omitempty,gte=0"`
	Quantity     *int      `json:"quantity" binding:"omitempty,gte=0"`
	Images       *[]string `json:"images"`
	CollectionID *string   `json:"collectionId"`
}

// productResponse is a product with its collection populated.
type productResponse struct {
	models.Product
	Collection *models.CollectionRef `json:"collection"`
}

func ListProducts(products repository.ProductStore, collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		var filter repository.ProductFilter
		if raw := strings.TrimSpace(c.Query("collectionId")); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid collectionId")
				return
			}
			filter.CollectionID = &id
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		list, err := products.List(ctx, filter)
		if err != nil {
			respondInternal(c, route, "error fetching products", err)
			return
		}

		populated, err := populateCollections(ctx, collections, list)
		if err != nil {
			respondInternal(c, route, "error fetching products", err)
			return
		}
		respondOK(c, http.StatusOK, populated)
	}
}

func CreateProduct(products repository.ProductStore, collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		description := strings.TrimSpace(req.Description)
		if name == "" || description == "" {
			respondWithError(c, http.StatusBadRequest, route, "name and description are required")
			return
		}
		collectionID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.CollectionID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid collectionId")
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		collection, err := collections.GetByID(ctx, collectionID)
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusBadRequest, route, "collection not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error creating product", err)
			return
		}

		now := time.Now().UTC()
		product := models.Product{
			Name:         name,
			Description:  description,
			Price:        *req.Price,
			Images:       cleanImages(req.Images),
			CollectionID: collectionID,
			Slug:         slug.WithTimestamp(name, now),
			CreatedAt:    now,
		}
		if req.Quantity != nil {
			product.Quantity = *req.Quantity
		}

		if err := products.Create(ctx, &product); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				respondWithError(c, http.StatusBadRequest, route, "a product with this slug already exists")
				return
			}
			respondInternal(c, route, "error creating product", err)
			return
		}

		ref := collection.Ref()
		respondOK(c, http.StatusCreated, productResponse{Product: product, Collection: &ref})
	}
}

func GetProduct(products repository.ProductStore, collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:slug"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		product, err := products.GetBySlug(ctx, c.Param("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error fetching product", err)
			return
		}

		populated, err := populateCollections(ctx, collections, []models.Product{product})
		if err != nil {
			respondInternal(c, route, "error fetching product", err)
			return
		}
		respondOK(c, http.StatusOK, populated[0])
	}
}

func UpdateProduct(products repository.ProductStore, collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:slug"
		defer handlePanic(c, route)

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		current, err := products.GetBySlug(ctx, c.Param("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error updating product", err)
			return
		}

		update := repository.ProductUpdate{Price: req.Price, Quantity: req.Quantity}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name is required")
				return
			}
			update.Name = &name
			if name != current.Name {
				derived := slug.WithTimestamp(name, time.Now().UTC())
				update.Slug = &derived
			}
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if description == "" {
				respondWithError(c, http.StatusBadRequest, route, "description is required")
				return
			}
			update.Description = &description
		}
		if req.Images != nil {
			images := cleanImages(*req.Images)
			update.Images = &images
		}
		if req.CollectionID != nil {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.CollectionID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid collectionId")
				return
			}
			if _, err := collections.GetByID(ctx, id); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					respondWithError(c, http.StatusBadRequest, route, "collection not found")
					return
				}
				respondInternal(c, route, "error updating product", err)
				return
			}
			update.CollectionID = &id
		}

		product, err := products.Update(ctx, current.Slug, update)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		case errors.Is(err, repository.ErrDuplicate):
			respondWithError(c, http.StatusBadRequest, route, "a product with this slug already exists")
			return
		case err != nil:
			respondInternal(c, route, "error updating product", err)
			return
		}

		populated, err := populateCollections(ctx, collections, []models.Product{product})
		if err != nil {
			respondInternal(c, route, "error updating product", err)
			return
		}
		respondOK(c, http.StatusOK, populated[0])
	}
}

func DeleteProduct(products repository.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:slug"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		err := products.Delete(ctx, c.Param("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error deleting product", err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{})
	}
}

// populateCollections attaches the {_id, name, slug} of each product's
// collection. A dangling reference leaves collection null.
func populateCollections(ctx context.Context, collections repository.CollectionStore, products []models.Product) ([]productResponse, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(products))
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.CollectionID]; ok {
			continue
		}
		seen[p.CollectionID] = struct{}{}
		ids = append(ids, p.CollectionID)
	}

	refs := make(map[primitive.ObjectID]models.CollectionRef, len(ids))
	if len(ids) > 0 {
		found, err := collections.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, col := range found {
			refs[col.ID] = col.Ref()
		}
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		item := productResponse{Product: p}
		if ref, ok := refs[p.CollectionID]; ok {
			item.Collection = &ref
		}
		out = append(out, item)
	}
	return out, nil
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, image := range images {
		if image = strings.TrimSpace(image); image != "" {
			out = append(out, image)
		}
	}
	return out
}
