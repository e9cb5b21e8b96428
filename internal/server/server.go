package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pantrybill/internal"
	"pantrybill/internal/config"
	"pantrybill/internal/logging"
	"pantrybill/internal/receipt"
	"pantrybill/internal/storage"
)

// ImageParser turns an uploaded receipt image into a plain-text transcript.
type ImageParser interface {
	ParseImage(ctx context.Context, filename string, image []byte) (string, error)
}

type Server struct {
	db     *storage.DB
	cfg    config.Config
	parser *receipt.Parser
	ocr    ImageParser
}

func New(db *storage.DB, cfg config.Config, parser *receipt.Parser, ocr ImageParser) *Server {
	return &Server{db: db, cfg: cfg, parser: parser, ocr: ocr}
}

// Router wires up all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.Post("/api/grocery-bill/parse-receipt", s.handleParseReceipt)
	r.Post("/api/parse-receipt-image", s.handleParseReceiptImage)
	r.Post("/api/grocery-bill/import", s.handleImportBill)
	r.Get("/api/grocery-bill", s.handleListBill)
	r.Post("/api/fridge/import", s.handleImportFridge)
	r.Get("/api/fridge", s.handleListFridge)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

// --- parse pasted receipt text ---

type parseReceiptRequest struct {
	ReceiptText string `json:"receipt_text"`
}

func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req parseReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReceiptText == "" {
		jsonError(w, "receipt_text is required", http.StatusBadRequest)
		return
	}
	items := s.parser.Parse(req.ReceiptText)
	if items == nil {
		items = []internal.BillItem{}
	}
	jsonOK(w, items)
}

// --- parse an uploaded receipt image via OCR ---

type parseImageResponse struct {
	Items []internal.BillItem `json:"items"`
	Text  string              `json:"text"`
}

func (s *Server) handleParseReceiptImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		jsonError(w, "receipt file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	text, err := s.ocr.ParseImage(r.Context(), header.Filename, image)
	if err != nil {
		jsonError(w, "ocr failed", http.StatusBadGateway, err)
		return
	}

	items := s.parser.Parse(text)
	if items == nil {
		items = []internal.BillItem{}
	}
	jsonOK(w, parseImageResponse{Items: items, Text: text})
}

// --- grocery bill ---

type importItemsRequest struct {
	Items []internal.BillItem `json:"items"`
}

type importItemsResponse struct {
	Imported int `json:"imported"`
}

func (s *Server) handleImportBill(w http.ResponseWriter, r *http.Request) {
	var req importItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		jsonError(w, "items are required", http.StatusBadRequest)
		return
	}
	if err := s.db.ImportBillItems(req.Items); err != nil {
		jsonError(w, "failed to import bill items", http.StatusInternalServerError, err)
		return
	}
	jsonOK(w, importItemsResponse{Imported: len(req.Items)})
}

func (s *Server) handleListBill(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListBill()
	if err != nil {
		jsonError(w, "failed to list grocery bill", http.StatusInternalServerError, err)
		return
	}
	if rows == nil {
		rows = []internal.BillRow{}
	}
	jsonOK(w, rows)
}

// --- fridge ---

func (s *Server) handleImportFridge(w http.ResponseWriter, r *http.Request) {
	var req importItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		jsonError(w, "items are required", http.StatusBadRequest)
		return
	}
	if err := s.db.UpsertFridgeItems(req.Items); err != nil {
		jsonError(w, "failed to import fridge items", http.StatusInternalServerError, err)
		return
	}
	jsonOK(w, importItemsResponse{Imported: len(req.Items)})
}

func (s *Server) handleListFridge(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.ListFridge()
	if err != nil {
		jsonError(w, "failed to list fridge", http.StatusInternalServerError, err)
		return
	}
	if rows == nil {
		rows = []internal.FridgeRow{}
	}
	jsonOK(w, rows)
}

// --- helpers ---

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int, errs ...error) {
	if status >= 500 && len(errs) > 0 {
		slog.Error(msg, "status", status, "error", errs[0])
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
