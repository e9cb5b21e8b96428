package pipeline

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"pantrybill/internal"
	"pantrybill/internal/config"
	"pantrybill/internal/receipt"
	"pantrybill/internal/storage"
)

// ProcessingService runs fetched receipt e-mails through the extraction and
// parsing pipeline and persists the results.
type ProcessingService struct {
	db     *storage.DB
	cfg    config.Config
	parser *receipt.Parser
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	parser := receipt.NewParser(receipt.Options{
		DiscountMarker: cfg.ReceiptDiscountMarker,
		TenderCodes:    cfg.ReceiptTenderCodes,
		SavingsLabel:   cfg.ReceiptSavingsLabel,
	})
	return &ProcessingService{db: db, cfg: cfg, parser: parser}
}

// Parser exposes the configured receipt parser for callers that parse
// transcripts directly (HTTP handlers, the one-shot CLI path).
func (s *ProcessingService) Parser() *receipt.Parser {
	return s.parser
}

type ProcessResult struct {
	ReceiptID int
	Parsed    int
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	row, err := s.db.MustReceiptByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessReceipt(row)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListReceiptsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedReceipts := 0
	processedItems := 0
	for _, row := range pending {
		if provider != "" && row.Provider != provider {
			continue
		}
		res, err := s.ProcessReceipt(row)
		if err != nil {
			return processedReceipts, processedItems, err
		}
		processedReceipts++
		processedItems += res.Parsed
	}
	return processedReceipts, processedItems, nil
}

func (s *ProcessingService) ProcessReceipt(row internal.ReceiptRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(row.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	texts, subject, attachmentNames, err := ExtractReceiptTexts(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	combined := make([]string, 0, len(texts))
	for _, t := range texts {
		combined = append(combined, t.Text)
	}
	detect := DetectReceipt(firstNonEmpty(subject, row.Subject), strings.Join(combined, "\n"), attachmentNames)

	if err := s.db.ClearReceiptItems(row.ID); err != nil {
		return ProcessResult{}, err
	}

	if !detect.IsReceipt {
		_ = s.db.UpdateReceiptStatus(row.ID, "skipped")
		_ = s.db.InsertRun(uuid.NewString(), row.ID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
			map[string]int{"transcripts": len(texts), "items": 0})
		return ProcessResult{ReceiptID: row.ID, Parsed: 0}, nil
	}

	// The HTML body is an alternative rendering of the plain body, so only
	// the first body transcript that yields items is kept. PDF attachments
	// are separate receipts and always parsed.
	parsed := 0
	bodyDone := false
	for _, t := range texts {
		isBody := t.Source == internal.SourceEmailText || t.Source == internal.SourceEmailHTML
		if isBody && bodyDone {
			continue
		}
		items := s.parser.Parse(t.Text)
		if len(items) == 0 {
			continue
		}
		if err := s.db.InsertReceiptItems(row.ID, t.Source, items); err != nil {
			return ProcessResult{}, err
		}
		parsed += len(items)
		if isBody {
			bodyDone = true
		}
	}

	if err := s.db.UpdateReceiptStatus(row.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(uuid.NewString(), row.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"transcripts": len(texts), "items": parsed})

	return ProcessResult{ReceiptID: row.ID, Parsed: parsed}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
