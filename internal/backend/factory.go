package backend

import (
	"context"
	"errors"
	"fmt"

	"kaamgarau/internal/adapters"
	"kaamgarau/internal/amqp"
	"kaamgarau/internal/log"
	"kaamgarau/internal/memory"
	"kaamgarau/internal/ports"
	gsheet "kaamgarau/internal/sheets/google"
	"kaamgarau/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger

	// newLedger is replaced in tests.
	newLedger func(ctx context.Context, cfg gsheet.Config) (adapters.SpendingLedger, error)
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		newLedger: func(ctx context.Context, cfg gsheet.Config) (adapters.SpendingLedger, error) {
			return gsheet.New(ctx, cfg)
		},
	}
}

// CreateBackend builds the store, routes spending to Google Sheets when
// asked and connects the recalculation publisher when AMQP is configured.
// On error everything opened so far is closed again.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &BackendResult{Checks: make(map[string]ports.Pinger)}
	var closers []func() error
	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*BackendResult, error) {
		if cerr := res.Cleanup(); cerr != nil {
			f.logger.Warn("Cleanup after failed backend creation", log.FieldError, cerr.Error())
		}
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize SQLite repository: %w", err))
		}
		closers = append(closers, repo.Close)
		res.Store = repo
		res.Checks["sqlite"] = repo
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	case MemoryBackend:
		var store *memory.Store
		if config.SeedDir != "" {
			store = memory.NewFromFiles(config.SeedDir)
		} else {
			store = memory.New()
		}
		res.Store = store
		f.logger.Info("Initialized memory backend", "seed_dir", config.SeedDir)
	}

	if config.SpendingSource == SpendingFromSheets {
		ledger, err := f.newLedger(ctx, gsheet.Config{
			SpreadsheetID: config.GoogleSpreadsheetID,
			LedgerSheet:   config.GoogleSpendingSheetName,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to initialize Google Sheets client: %w", err))
		}
		res.Store = adapters.NewSpendingRouter(res.Store, ledger)
		f.logger.Info("Spending events routed to Google Sheets", "sheet", config.GoogleSpendingSheetName)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		switch {
		case err != nil && config.RequireAMQP:
			return fail(fmt.Errorf("failed to initialize AMQP client: %w", err))
		case err != nil:
			f.logger.Warn("Failed to initialize AMQP client, levels update on worker startup only", log.FieldError, err.Error())
		default:
			closers = append(closers, client.Close)
			res.Publisher = client
			res.Checks["amqp"] = client
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	return res, nil
}
