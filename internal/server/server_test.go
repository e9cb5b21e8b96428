package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"pantrybill/internal"
	"pantrybill/internal/config"
	"pantrybill/internal/receipt"
	"pantrybill/internal/storage"
)

type fakeImageParser struct {
	text string
	err  error
}

func (f *fakeImageParser) ParseImage(ctx context.Context, filename string, image []byte) (string, error) {
	return f.text, f.err
}

func newTestServer(t *testing.T, ocr ImageParser) (*Server, http.Handler) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{MaxUploadBytes: 1 << 20}
	srv := New(db, cfg, receipt.NewParser(receipt.Options{}), ocr)
	return srv, srv.Router()
}

func TestHealthz(t *testing.T) {
	_, router := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestParseReceipt(t *testing.T) {
	_, router := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{
		"receipt_text": "KRO SHRD CHDR CHS\n3.99 F\nKROGER SAVINGS\n1.50",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/grocery-bill/parse-receipt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var items []internal.BillItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "SHREDDED CHEDDAR CHS" || items[0].PricePer != 3.99 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "Total Kroger Savings" || items[1].PricePer != 1.50 {
		t.Fatalf("unexpected savings item: %+v", items[1])
	}
}

func TestParseReceiptMissingText(t *testing.T) {
	_, router := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{"receipt_text": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/grocery-bill/parse-receipt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParseReceiptEmptyResult(t *testing.T) {
	_, router := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{"receipt_text": "TAX\nBALANCE 12.00"})
	req := httptest.NewRequest(http.MethodPost, "/api/grocery-bill/parse-receipt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty json array, got %q", got)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, writer.FormDataContentType()
}

func TestParseReceiptImage(t *testing.T) {
	ocr := &fakeImageParser{text: "WHL MILK\n2.79 B"}
	_, router := newTestServer(t, ocr)

	buf, contentType := multipartUpload(t, "receipt", "receipt.jpg", []byte("fake-image-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/parse-receipt-image", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []internal.BillItem `json:"items"`
		Text  string              `json:"text"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Text != "WHL MILK\n2.79 B" {
		t.Fatalf("unexpected transcript: %q", resp.Text)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "WHOLE MILK" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestParseReceiptImageMissingFile(t *testing.T) {
	_, router := newTestServer(t, &fakeImageParser{})

	buf, contentType := multipartUpload(t, "other", "receipt.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/parse-receipt-image", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParseReceiptImageOCRFailure(t *testing.T) {
	ocr := &fakeImageParser{err: errors.New("upstream down")}
	_, router := newTestServer(t, ocr)

	buf, contentType := multipartUpload(t, "receipt", "receipt.jpg", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/parse-receipt-image", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestImportAndListBill(t *testing.T) {
	_, router := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]any{
		"items": []internal.BillItem{
			{Name: "WHOLE MILK", PricePer: 2.79, Quantity: 1},
			{Name: "SHREDDED CHEDDAR CHS", Unit: "6PK", PricePer: 3.99, Quantity: 2},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/grocery-bill/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/grocery-bill", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var rows []internal.BillRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].Unit != "6PK" || rows[1].Quantity != 2 {
		t.Fatalf("unexpected row: %+v", rows[1])
	}
}

func TestImportBillEmptyItems(t *testing.T) {
	_, router := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]any{"items": []internal.BillItem{}})
	req := httptest.NewRequest(http.MethodPost, "/api/grocery-bill/import", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFridgeImportIncrementsQuantity(t *testing.T) {
	_, router := newTestServer(t, nil)

	importFridge := func(items []internal.BillItem) {
		t.Helper()
		body, _ := json.Marshal(map[string]any{"items": items})
		req := httptest.NewRequest(http.MethodPost, "/api/fridge/import", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	importFridge([]internal.BillItem{{Name: "WHOLE MILK", Quantity: 1}})
	importFridge([]internal.BillItem{{Name: "WHOLE MILK", Quantity: 2}, {Name: "EGGS", Quantity: 1}})

	req := httptest.NewRequest(http.MethodGet, "/api/fridge", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var rows []internal.FridgeRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	byName := map[string]int{}
	for _, r := range rows {
		byName[r.Name] = r.Quantity
	}
	if byName["WHOLE MILK"] != 3 {
		t.Fatalf("expected quantity 3 for WHOLE MILK, got %d", byName["WHOLE MILK"])
	}
	if byName["EGGS"] != 1 {
		t.Fatalf("expected quantity 1 for EGGS, got %d", byName["EGGS"])
	}
}
