package listener

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"pantrybill/internal/config"
	"pantrybill/internal/connectors"
	gmailconnector "pantrybill/internal/connectors/gmail"
	imapconnector "pantrybill/internal/connectors/imap"
	"pantrybill/internal/pipeline"
	"pantrybill/internal/storage"
)

// Service polls a mail provider for new e-receipts, parses them into bill
// items, and optionally exports each processed receipt to a spreadsheet.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			slog.Error("listener cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processed, parsed, err := processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportProcessed(provider); err != nil {
			return err
		}
	}

	_ = s.db.SetMetadata("listener:lastCycleAt", time.Now().UTC().Format(time.RFC3339))

	slog.Info("listener cycle done",
		"provider", provider,
		"fetched", fetchResult.Fetched,
		"stored", fetchResult.Stored,
		"processed", processed,
		"items", parsed,
	)
	_ = ctx
	return nil
}

func (s *Service) exportProcessed(provider string) error {
	receipts, err := s.db.ListReceiptsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, r := range receipts {
		if r.Provider != provider {
			continue
		}
		rows, err := s.db.GetExportRows(r.ID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", r.ID, sanitizeMessageID(r.MessageID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportItemsToXLSX(rows, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateReceiptStatus(r.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
