package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/pkg/config"
	mongotx "equiprent/pkg/db/mongo"
	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type SearchFilter struct {
	EquipmentType string
	EquipmentID   string
	OrderID       string
	Status        string
	FromDate      string
	ToDate        string
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindActiveByOrder(ctx context.Context, orderID string) (*model.Reservation, error)
	FindActiveInRange(ctx context.Context, equipmentType, equipmentID, fromDate, toDate string) ([]*model.Reservation, error)
	Search(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.Reservation, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	Supersede(ctx context.Context, id string, next *model.Reservation) error
	SetCalendarEventID(ctx context.Context, id, eventID string) error
	Cancel(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	if reservation.Status == "" {
		reservation.Status = model.ReservationActive
	}

	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

// FindActiveByOrder returns the newest active reservation of an order.
func (r *mongoReservationRepository) FindActiveByOrder(ctx context.Context, orderID string) (*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"orderId": orderID, "status": model.ReservationActive}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter, opts).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation for order: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindActiveInRange(ctx context.Context, equipmentType, equipmentID, fromDate, toDate string) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := activeInRangeFilter(equipmentType, equipmentID, fromDate, toDate)
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Search(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// Supersede rewrites the interval of an active reservation in place and drops its calendar link.
func (r *mongoReservationRepository) Supersede(ctx context.Context, id string, next *model.Reservation) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.ReservationActive}
	update := supersedeUpdate(next, time.Now().UTC().Truncate(time.Millisecond))

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to supersede reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	next.ID = id
	next.Status = model.ReservationActive
	next.CalendarEventID = ""
	return nil
}

func (r *mongoReservationRepository) SetCalendarEventID(ctx context.Context, id, eventID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"calendarEventId": eventID, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to link calendar event: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) Cancel(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.ReservationActive}
	update := bson.M{"$set": bson.M{"status": model.ReservationCancelled, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// activeInRangeFilter matches active reservations whose [date, endDate] touches [fromDate, toDate].
// ISO dates compare correctly as strings.
func activeInRangeFilter(equipmentType, equipmentID, fromDate, toDate string) bson.M {
	return bson.M{
		"equipmentType": equipmentType,
		"equipmentId":   equipmentID,
		"status":        model.ReservationActive,
		"date":          bson.M{"$lte": toDate},
		"$or": []bson.M{
			{"endDate": bson.M{"$gte": fromDate}},
			{"endDate": bson.M{"$exists": false}, "date": bson.M{"$gte": fromDate}},
		},
	}
}

func buildSearchFilter(f SearchFilter) bson.M {
	filter := bson.M{}
	if f.EquipmentType != "" {
		filter["equipmentType"] = f.EquipmentType
	}
	if f.EquipmentID != "" {
		filter["equipmentId"] = f.EquipmentID
	}
	if f.OrderID != "" {
		filter["orderId"] = f.OrderID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	if f.FromDate != "" || f.ToDate != "" {
		var dateFilters []bson.M
		if f.ToDate != "" {
			dateFilters = append(dateFilters, bson.M{"date": bson.M{"$lte": f.ToDate}})
		}
		if f.FromDate != "" {
			dateFilters = append(dateFilters, bson.M{"$or": []bson.M{
				{"endDate": bson.M{"$gte": f.FromDate}},
				{"endDate": bson.M{"$exists": false}, "date": bson.M{"$gte": f.FromDate}},
			}})
		}
		filter["$and"] = dateFilters
	}

	return filter
}

func supersedeUpdate(next *model.Reservation, now time.Time) bson.M {
	set := bson.M{
		"date":      next.Date,
		"startTime": next.StartTime,
		"endTime":   next.EndTime,
		"updatedAt": now,
	}
	unset := bson.M{"calendarEventId": ""}

	optional := []struct {
		field string
		value string
	}{
		{"endDate", next.EndDate},
		{"reservationType", next.ReservationType},
		{"summary", next.Summary},
	}
	for _, o := range optional {
		if o.value == "" {
			unset[o.field] = ""
		} else {
			set[o.field] = o.value
		}
	}

	return bson.M{"$set": set, "$unset": unset}
}
