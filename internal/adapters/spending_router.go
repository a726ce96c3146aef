package adapters

import (
	"context"

	"kaamgarau/internal/core"
	"kaamgarau/internal/ports"
)

// SpendingLedger is an external source of spending events, such as a
// shared spreadsheet.
type SpendingLedger interface {
	ports.SpendingReader
	ports.SpendingRecorder
}

// SpendingRouter serves jobs and snapshots from a store while sending every
// spending read and write to a ledger. Handlers and services use it as a
// plain ports.Store.
type SpendingRouter struct {
	ports.Store
	ledger SpendingLedger
}

var _ ports.Store = (*SpendingRouter)(nil)

func NewSpendingRouter(store ports.Store, ledger SpendingLedger) *SpendingRouter {
	return &SpendingRouter{Store: store, ledger: ledger}
}

// SpendingEvents implements ports.SpendingReader
func (a *SpendingRouter) SpendingEvents(ctx context.Context, userID string) ([]core.SpendingEvent, error) {
	return a.ledger.SpendingEvents(ctx, userID)
}

// RecordSpending implements ports.SpendingRecorder
func (a *SpendingRouter) RecordSpending(ctx context.Context, userID string, e core.SpendingEvent) (string, error) {
	return a.ledger.RecordSpending(ctx, userID, e)
}

// Ping checks the underlying store when it supports it.
func (a *SpendingRouter) Ping(ctx context.Context) error {
	if p, ok := a.Store.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
