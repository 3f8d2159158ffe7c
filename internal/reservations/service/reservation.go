package service

import (
	"context"
	"errors"
	"sync"

	reservationserrors "equiprent/internal/reservations/errors"
	"equiprent/internal/reservations/repository"
	"equiprent/pkg/config"
	apperrors "equiprent/pkg/errors"
	"equiprent/pkg/logger"
	"equiprent/pkg/model"
)

type ReservationService interface {
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type reservationService struct {
	repo repository.ReservationRepository
	log  *logger.Logger
}

func NewReservationService(cfg *config.Config, repo repository.ReservationRepository) ReservationService {
	return &reservationService{repo: repo, log: componentLogger(cfg, "reservations")}
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, toAppError(err, "retrieve reservation")
	}
	return reservation, nil
}

// Search counts and pages in parallel.
func (s *reservationService) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if filter.FromDate != "" && filter.ToDate != "" && filter.FromDate > filter.ToDate {
		return nil, 0, apperrors.InvalidInput("from must not be after to")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.Search(ctx, filter, limit, offset)
		if errFind != nil {
			s.log.Error("Failed to search reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to search reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	return reservations, count, nil
}
