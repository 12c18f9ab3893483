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

type mongoOrders struct {
	coll *mongo.Collection
}

func (s *mongoOrders) List(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, options.Find().SetSort(newestFirst))
}

func (s *mongoOrders) Recent(ctx context.Context, limit int64) ([]models.Order, error) {
	return s.find(ctx, options.Find().SetSort(newestFirst).SetLimit(limit))
}

func (s *mongoOrders) find(ctx context.Context, opts *options.FindOptions) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *mongoOrders) GetByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	return order, mapError(err)
}

func (s *mongoOrders) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return mapError(err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var updated models.Order
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	return updated, mapError(err)
}

func (s *mongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoOrders) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.coll.CountDocuments(ctx, bson.M{})
}

func (s *mongoOrders) Revenue(ctx context.Context, statuses []models.OrderStatus) (float64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": statuses}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var points []models.RevenuePoint
	if err := cursor.All(ctx, &points); err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}
	return points[0].Total, nil
}

func (s *mongoOrders) RevenueSeries(ctx context.Context, statuses []models.OrderStatus, since time.Time, period Period) ([]models.RevenuePoint, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"status":    bson.M{"$in": statuses},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": period.mongoFormat(), "date": "$createdAt"}},
			"total": bson.M{"$sum": "$total"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	points := make([]models.RevenuePoint, 0)
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, mapError(err)
}

func (s *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, mapError(err)
}

func (s *mongoUsers) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return mapError(err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoUsers) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, mustChange bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password":           hash,
		"mustChangePassword": mustChange,
		"updatedAt":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
