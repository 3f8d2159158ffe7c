package repository

import (
	"context"
	"fmt"
	"time"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/pkg/config"
	mongotx "equiprent/pkg/db/mongo"
	"equiprent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Reservation_locks"

// ReservationLockRepository provides advisory locks keyed per equipment unit.
type ReservationLockRepository interface {
	Acquire(ctx context.Context, lockID, owner string, ttl time.Duration) error
	Release(ctx context.Context, lockID, owner string) error
}

type mongoReservationLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewReservationLockRepository(cfg *config.Config) ReservationLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func LockID(equipmentType, equipmentID string) string {
	return fmt.Sprintf("reservation_lock_%s_%s", equipmentType, equipmentID)
}

// Acquire returns ErrLockBusy while another owner holds an unexpired lock.
// An expired lock is removed and the insert retried once; the TTL index reaps
// leftovers only about once a minute.
func (r *mongoReservationLockRepository) Acquire(ctx context.Context, lockID, owner string, ttl time.Duration) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	err := r.insert(ctx, lockID, owner, ttl)
	if err == nil {
		return nil
	}
	if !mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("failed to acquire reservation lock: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expiresAt": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to clear stale reservation lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrLockBusy
	}

	if err := r.insert(ctx, lockID, owner, ttl); err != nil {
		if mongotx.IsDuplicateKey(err) {
			return reservationserrors.ErrLockBusy
		}
		return fmt.Errorf("failed to acquire reservation lock: %w", err)
	}
	return nil
}

func (r *mongoReservationLockRepository) insert(ctx context.Context, lockID, owner string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, &model.ReservationLock{
		ID:        lockID,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return err
}

// Release only removes the lock when owner still holds it.
func (r *mongoReservationLockRepository) Release(ctx context.Context, lockID, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release reservation lock: %w", err)
	}
	return nil
}
