package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"pantrybill/internal"
	"pantrybill/internal/config"
	"pantrybill/internal/connectors"
	gmailconnector "pantrybill/internal/connectors/gmail"
	imapconnector "pantrybill/internal/connectors/imap"
	"pantrybill/internal/listener"
	"pantrybill/internal/logging"
	"pantrybill/internal/ocr"
	"pantrybill/internal/pipeline"
	"pantrybill/internal/server"
	"pantrybill/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "-", "receipt text file, or - for stdin")
		out := fs.String("out", "", "optional output xlsx path; default prints JSON")
		_ = fs.Parse(os.Args[2:])

		var raw []byte
		if *input == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(*input)
		}
		must(err)

		processor := pipeline.NewProcessingService(db, cfg)
		items := processor.Parser().Parse(string(raw))

		if strings.TrimSpace(*out) == "" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if items == nil {
				items = []internal.BillItem{}
			}
			must(enc.Encode(items))
			return
		}

		rows := make([]internal.ItemExportRow, 0, len(items))
		for i, item := range items {
			rows = append(rows, internal.ItemExportRow{
				Source:   string(internal.SourcePastedText),
				Position: i,
				Name:     item.Name,
				Unit:     item.Unit,
				PricePer: item.PricePer,
				Quantity: item.Quantity,
			})
		}
		must(pipeline.ExportItemsToXLSX(rows, *out))
		fmt.Printf("parsed %d items to %s\n", len(rows), *out)
	case "serve":
		logging.Setup()
		processor := pipeline.NewProcessingService(db, cfg)
		srv := server.New(db, cfg, processor.Parser(), ocr.NewClient(cfg))
		fmt.Printf("listening on %s\n", cfg.HTTPAddr)
		must(http.ListenAndServe(cfg.HTTPAddr, srv.Router()))
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed receipt id=%d items=%d\n", res.ReceiptID, res.Parsed)
			return
		}
		processedReceipts, processedItems, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending receipts=%d items=%d\n", processedReceipts, processedItems)
	case "mail:listen":
		logging.Setup()
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		receiptID := fs.Int("receiptId", 0, "internal receipt id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *receiptID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--receiptId and --out are required"))
		}
		rows, err := db.GetExportRows(*receiptID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for receiptId=%d", *receiptID))
		}
		must(pipeline.ExportItemsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "bill:list":
		rows, err := db.ListBill()
		must(err)
		for _, row := range rows {
			fmt.Printf("%d\t%s\t%s\t%.2f\tx%d\n", row.ID, row.Name, row.Unit, row.PricePer, row.Quantity)
		}
		fmt.Printf("total rows=%d\n", len(rows))
	default:
		usage()
		os.Exit(1)
	}
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: pantrybill <command>")
	fmt.Println("commands:")
	fmt.Println("  parse [--input=receipt.txt|-] [--out=./out/items.xlsx]")
	fmt.Println("  serve")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx --receiptId=1 --out=./out/result.xlsx")
	fmt.Println("  bill:list")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
