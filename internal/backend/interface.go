package backend

import (
	"context"

	"kaamgarau/internal/amqp"
	"kaamgarau/internal/ports"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// BackendResult is a ready-to-use store plus everything that should be
// probed for readiness and closed on shutdown.
type BackendResult struct {
	Store ports.Store
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher *amqp.Client
	Checks    map[string]ports.Pinger
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific
	SeedDir string

	SpendingSource SpendingSource

	// Google Sheets specific
	GoogleSpreadsheetID     string
	GoogleSpendingSheetName string

	// AMQP is optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP turns an unreachable broker into an error instead of a
	// warning.
	RequireAMQP bool
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SpendingSource selects where spending events live.
type SpendingSource string

const (
	SpendingFromStore  SpendingSource = "store"
	SpendingFromSheets SpendingSource = "sheets"
)

func (s SpendingSource) IsValid() bool {
	return s == SpendingFromStore || s == SpendingFromSheets
}
