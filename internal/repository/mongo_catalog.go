package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bijouterie/internal/models"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type mongoCollections struct {
	coll *mongo.Collection
}

func (s *mongoCollections) List(ctx context.Context) ([]models.Collection, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	collections := make([]models.Collection, 0)
	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *mongoCollections) GetBySlug(ctx context.Context, slug string) (models.Collection, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *mongoCollections) GetByID(ctx context.Context, id primitive.ObjectID) (models.Collection, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoCollections) findOne(ctx context.Context, filter bson.M) (models.Collection, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var collection models.Collection
	err := s.coll.FindOne(ctx, filter).Decode(&collection)
	return collection, mapError(err)
}

func (s *mongoCollections) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collection, error) {
	collections := make([]models.Collection, 0)
	if len(ids) == 0 {
		return collections, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *mongoCollections) Create(ctx context.Context, collection *models.Collection) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	collection.CreatedAt = now
	collection.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, collection)
	if err != nil {
		return mapError(err)
	}
	collection.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoCollections) Update(ctx context.Context, slug string, update CollectionUpdate) (models.Collection, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.Slug != nil {
		set["slug"] = *update.Slug
	}

	var updated models.Collection
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"slug": slug},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	return updated, mapError(err)
}

func (s *mongoCollections) Delete(ctx context.Context, slug string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoCollections) DeleteAll(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.DeleteMany(ctx, bson.M{})
	return err
}

func (s *mongoCollections) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.coll.CountDocuments(ctx, bson.M{})
}

type mongoProducts struct {
	coll *mongo.Collection
}

func (s *mongoProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.CollectionID != nil {
		query["collectionId"] = *filter.CollectionID
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for i := range products {
		normalizeImages(&products[i])
	}
	return products, nil
}

func (s *mongoProducts) GetBySlug(ctx context.Context, slug string) (models.Product, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *mongoProducts) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *mongoProducts) findOne(ctx context.Context, filter bson.M) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := s.coll.FindOne(ctx, filter).Decode(&product); err != nil {
		return models.Product{}, mapError(err)
	}
	normalizeImages(&product)
	return product, nil
}

func (s *mongoProducts) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	normalizeImages(product)
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.UpdatedAt = product.CreatedAt

	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return mapError(err)
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoProducts) Update(ctx context.Context, slug string, update ProductUpdate) (models.Product, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Quantity != nil {
		set["quantity"] = *update.Quantity
	}
	if update.Images != nil {
		images := *update.Images
		if images == nil {
			images = []string{}
		}
		set["images"] = images
	}
	if update.CollectionID != nil {
		set["collectionId"] = *update.CollectionID
	}
	if update.Slug != nil {
		set["slug"] = *update.Slug
	}

	var updated models.Product
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"slug": slug},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return models.Product{}, mapError(err)
	}
	normalizeImages(&updated)
	return updated, nil
}

func (s *mongoProducts) Delete(ctx context.Context, slug string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoProducts) DeleteAll(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.coll.DeleteMany(ctx, bson.M{})
	return err
}

func (s *mongoProducts) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.coll.CountDocuments(ctx, bson.M{})
}

func (s *mongoProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"_id":      id,
		"quantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"quantity": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (s *mongoProducts) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"quantity": quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeImages(p *models.Product) {
	if p.Images == nil {
		p.Images = []string{}
	}
}
