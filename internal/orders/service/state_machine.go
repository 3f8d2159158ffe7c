package service

import (
	"fmt"
	"slices"

	orderserrors "equiprent/internal/orders/errors"
	"equiprent/pkg/model"
)

// transitions lists the statuses reachable from each status. Completed and
// cancelled orders are final.
var transitions = map[string][]string{
	model.OrderPending:    {model.OrderInProgress, model.OrderCancelled},
	model.OrderInProgress: {model.OrderCompleted, model.OrderCancelled},
}

func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

func checkTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", orderserrors.ErrInvalidTransition, from, to)
	}
	return nil
}
