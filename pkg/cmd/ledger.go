// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/n8nmigrate/pkg/ledger"
)

var supportedLedgerProviders = []string{"file", "postgres", "postgresql", "sqlite", "sqlite3", "redis", "rediss"}

// NewLedger opens the resource ledger named by ledgerURL. The scheme picks the
// backend; a bare path is a JSON file.
//
// nolint:ireturn // callers only need the ledger.Store contract
func NewLedger(ctx context.Context, logger *slog.Logger, ledgerURL string) (ledger.Store, error) {
	if ledgerURL == "" {
		ledgerURL = ledger.DefaultPath
	}

	switch parseLedgerProvider(ledgerURL) {
	case "postgres", "postgresql":
		return ledger.NewPostgresStore(ctx, logger, ledgerURL)
	case "sqlite", "sqlite3":
		return ledger.NewSQLiteStore(ctx, logger, ledgerURL)
	case "redis", "rediss":
		return ledger.NewRedisStore(ctx, logger, ledgerURL)
	case "file":
		return ledger.NewFileStore(logger, ledgerURL), nil
	default:
		return nil, fmt.Errorf("unsupported ledger URL %q (supported schemes: %s)", ledgerURL, strings.Join(supportedLedgerProviders, ", "))
	}
}

func parseLedgerProvider(ledgerURL string) string {
	parts := strings.SplitN(ledgerURL, "://", 2)
	if len(parts) == 1 {
		return "file"
	}

	provider := parts[0]
	for _, supported := range supportedLedgerProviders {
		if provider == supported {
			return provider
		}
	}

	return ""
}
