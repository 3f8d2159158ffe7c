package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderserrors "equiprent/internal/orders/errors"
	"equiprent/pkg/config"
	mongotx "equiprent/pkg/db/mongo"
	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Orders"
)

// StatusChange is applied together with a status transition.
type StatusChange struct {
	Status          string
	ReservationType string
	EndTime         string
	EndDate         string
	Quantity        int
	ReservationID   string
}

type OrderRepository interface {
	// NewID allocates an order ID before the order is stored, so its reservation can reference it.
	NewID() string
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	// UpdateStatus applies change only while the order is still in fromStatus.
	UpdateStatus(ctx context.Context, id, fromStatus string, change StatusChange) (*model.Order, error)
	FindOpenByEquipment(ctx context.Context, serviceType, equipmentID, fromDate, toDate string) ([]*model.Order, error)
}

type mongoOrderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOrderRepository(cfg *config.Config) OrderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoOrderRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Order IDs are ObjectID hex strings stored as string keys.
func (r *mongoOrderRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *model.Order) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if order.ID == "" {
		order.ID = r.NewID()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	var order model.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, orderserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return &order, nil
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id, fromStatus string, change StatusChange) (*model.Order, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", orderserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": id, "status": fromStatus}
	update := statusUpdate(change, time.Now().UTC().Truncate(time.Millisecond))
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order model.Order
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check order existence: %w", err)
	}
	if count == 0 {
		return nil, orderserrors.ErrNotFound
	}
	return nil, orderserrors.ErrStatusChanged
}

func (r *mongoOrderRepository) FindOpenByEquipment(ctx context.Context, serviceType, equipmentID, fromDate, toDate string) ([]*model.Order, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, openByEquipmentFilter(serviceType, equipmentID, fromDate, toDate))
	if err != nil {
		return nil, fmt.Errorf("failed to find open orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func openByEquipmentFilter(serviceType, equipmentID, fromDate, toDate string) bson.M {
	return bson.M{
		"serviceType": serviceType,
		"equipmentId": equipmentID,
		"status":      bson.M{"$in": []string{model.OrderPending, model.OrderInProgress}},
		"orderDate":   bson.M{"$gte": fromDate, "$lte": toDate},
	}
}

func statusUpdate(change StatusChange, now time.Time) bson.M {
	set := bson.M{
		"status":    change.Status,
		"updatedAt": now,
	}
	if change.ReservationType != "" {
		set["reservationType"] = change.ReservationType
	}
	if change.EndTime != "" {
		set["endTime"] = change.EndTime
	}
	if change.EndDate != "" {
		set["endDate"] = change.EndDate
	}
	if change.Quantity > 0 {
		set["quantity"] = change.Quantity
	}
	if change.ReservationID != "" {
		set["reservationId"] = change.ReservationID
	}
	return bson.M{"$set": set}
}
