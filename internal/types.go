package internal

// ReceiptSource identifies where a receipt transcript came from.
type ReceiptSource string

const (
	SourcePastedText ReceiptSource = "pasted_text"
	SourceOCR        ReceiptSource = "ocr"
	SourceEmailText  ReceiptSource = "email_text"
	SourceEmailHTML  ReceiptSource = "email_html"
	SourcePDF        ReceiptSource = "pdf"
)

// BillItem is one purchased item extracted from a receipt transcript.
// PricePer is a two-decimal currency amount; Quantity is at least 1.
type BillItem struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	PricePer float64 `json:"price_per"`
	Quantity int     `json:"quantity"`
}

// BillRow is a persisted grocery-bill line.
type BillRow struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	PricePer float64 `json:"price_per"`
	Quantity int     `json:"quantity"`
}

// FridgeRow is a persisted fridge-inventory line.
type FridgeRow struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReceiptRow tracks one ingested receipt e-mail through the
// fetch -> process -> export lifecycle.
type ReceiptRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// FetchedMailMessage is a raw message pulled from a mail provider before it
// is stored and processed.
type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// ReceiptText is one candidate transcript extracted from an e-mail: the plain
// body, a flattened HTML body, or the text of a PDF attachment.
type ReceiptText struct {
	Source ReceiptSource
	Name   string
	Text   string
}

// ItemExportRow is a flattened parsed item used by the XLSX export.
type ItemExportRow struct {
	ReceiptID int
	Source    string
	Position  int
	Name      string
	Unit      string
	PricePer  float64
	Quantity  int
}
