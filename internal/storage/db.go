package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"pantrybill/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS receipts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS receipt_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  receiptId INTEGER NOT NULL,
  position INTEGER NOT NULL,
  source TEXT NOT NULL,
  name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  pricePer REAL NOT NULL,
  quantity INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(receiptId, source, position),
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS grocery_bill (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL,
  pricePer REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS fridge_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  quantity INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  receiptId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertReceipt(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.ReceiptRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO receipts (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ReceiptRow{}, err
	}

	row, err := d.GetReceiptByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, errors.New("failed to upsert receipt")
	}
	return *row, nil
}

func (d *DB) GetReceiptByProviderMessageID(provider, messageID string) (*internal.ReceiptRow, error) {
	var row internal.ReceiptRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM receipts WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustReceiptByProviderMessageID(provider, messageID string) (internal.ReceiptRow, error) {
	row, err := d.GetReceiptByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, fmt.Errorf("receipt not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListReceiptsByStatus(status string, limit int) ([]internal.ReceiptRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM receipts WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReceiptRow
	for rows.Next() {
		var row internal.ReceiptRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReceiptStatus(receiptID int, status string) error {
	_, err := d.conn.Exec(`UPDATE receipts SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, receiptID)
	return err
}

// ClearReceiptItems removes previously parsed items so a receipt can be
// reprocessed without duplicating rows.
func (d *DB) ClearReceiptItems(receiptID int) error {
	_, err := d.conn.Exec(`DELETE FROM receipt_items WHERE receiptId = ?`, receiptID)
	return err
}

func (d *DB) InsertReceiptItems(receiptID int, source internal.ReceiptSource, items []internal.BillItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO receipt_items (receiptId, position, source, name, unit, pricePer, quantity)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, item := range items {
		if _, err := stmt.Exec(receiptID, pos+1, string(source), item.Name, item.Unit, item.PricePer, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) GetExportRows(receiptID int) ([]internal.ItemExportRow, error) {
	rows, err := d.conn.Query(`
SELECT receiptId, source, position, name, unit, pricePer, quantity
FROM receipt_items
WHERE receiptId = ?
ORDER BY source ASC, position ASC
`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ItemExportRow
	for rows.Next() {
		var row internal.ItemExportRow
		if err := rows.Scan(&row.ReceiptID, &row.Source, &row.Position, &row.Name, &row.Unit, &row.PricePer, &row.Quantity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ImportBillItems appends parsed items to the grocery bill.
func (d *DB) ImportBillItems(items []internal.BillItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO grocery_bill (name, unit, quantity, pricePer) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(item.Name, item.Unit, item.Quantity, item.PricePer); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListBill() ([]internal.BillRow, error) {
	rows, err := d.conn.Query(`SELECT id, name, unit, quantity, pricePer FROM grocery_bill ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.BillRow
	for rows.Next() {
		var row internal.BillRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Unit, &row.Quantity, &row.PricePer); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpsertFridgeItems increments the stored quantity for items already in the
// fridge and inserts the rest.
func (d *DB) UpsertFridgeItems(items []internal.BillItem) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO fridge_items (name, quantity) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET quantity = quantity + excluded.quantity
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(item.Name, item.Quantity); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListFridge() ([]internal.FridgeRow, error) {
	rows, err := d.conn.Query(`SELECT id, name, quantity FROM fridge_items ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.FridgeRow
	for rows.Next() {
		var row internal.FridgeRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Quantity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, receiptID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, receiptId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, receiptID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
