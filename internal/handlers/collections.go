package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bijouterie/internal/models"
	"bijouterie/internal/repository"
	"bijouterie/internal/slug"
)

const duplicateCollectionMessage = "a collection with this name already exists"

type createCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image"`
}

type updateCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

func ListCollections(collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/collections"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		list, err := collections.List(ctx)
		if err != nil {
			respondInternal(c, route, "error fetching collections", err)
			return
		}
		respondOK(c, http.StatusOK, list)
	}
}

func CreateCollection(collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/collections"
		defer handlePanic(c, route)

		var req createCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		collection := models.Collection{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Image:       strings.TrimSpace(req.Image),
		}
		if collection.Name == "" || collection.Description == "" {
			respondWithError(c, http.StatusBadRequest, route, "name and description are required")
			return
		}
		collection.Slug = slug.Make(collection.Name)
		if collection.Slug == "" {
			respondWithError(c, http.StatusBadRequest, route, "name must contain letters or digits")
			return
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		if err := collections.Create(ctx, &collection); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				respondWithError(c, http.StatusBadRequest, route, duplicateCollectionMessage)
				return
			}
			respondInternal(c, route, "error creating collection", err)
			return
		}
		respondOK(c, http.StatusCreated, collection)
	}
}

func GetCollection(collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/collections/:slug"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		collection, err := collections.GetBySlug(ctx, c.Param("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "collection not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error fetching collection", err)
			return
		}
		respondOK(c, http.StatusOK, collection)
	}
}

func UpdateCollection(collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/collections/:slug"
		defer handlePanic(c, route)

		var req updateCollectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		var update repository.CollectionUpdate
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name is required")
				return
			}
			derived := slug.Make(name)
			if derived == "" {
				respondWithError(c, http.StatusBadRequest, route, "name must contain letters or digits")
				return
			}
			update.Name = &name
			update.Slug = &derived
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if description == "" {
				respondWithError(c, http.StatusBadRequest, route, "description is required")
				return
			}
			update.Description = &description
		}
		if req.Image != nil {
			image := strings.TrimSpace(*req.Image)
			update.Image = &image
		}

		ctx, cancel := dbContext(c)
		defer cancel()

		collection, err := collections.Update(ctx, c.Param("slug"), update)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondWithError(c, http.StatusNotFound, route, "collection not found")
		case errors.Is(err, repository.ErrDuplicate):
			respondWithError(c, http.StatusBadRequest, route, duplicateCollectionMessage)
		case err != nil:
			respondInternal(c, route, "error updating collection", err)
		default:
			respondOK(c, http.StatusOK, collection)
		}
	}
}

func DeleteCollection(collections repository.CollectionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/collections/:slug"
		defer handlePanic(c, route)

		ctx, cancel := dbContext(c)
		defer cancel()

		err := collections.Delete(ctx, c.Param("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "collection not found")
			return
		}
		if err != nil {
			respondInternal(c, route, "error deleting collection", err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{})
	}
}
