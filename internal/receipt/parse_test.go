package receipt

import "testing"

func TestParseSingleItem(t *testing.T) {
	p := NewParser(Options{})
	items := p.Parse("SHRD CHDR CHS\n3.99 F")
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	got := items[0]
	if got.Name != "SHREDDED CHEDDAR CHS" || got.Unit != "" || got.PricePer != 3.99 || got.Quantity != 1 {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestParseAggregatesRepeatedLines(t *testing.T) {
	p := NewParser(Options{})
	items := p.Parse("SHRD CHDR CHS\n3.99 F\nSHRD CHDR CHS\n3.99 F")
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("quantity=%d", items[0].Quantity)
	}
}

func TestParseSavingsAppendedLast(t *testing.T) {
	p := NewParser(Options{})
	text := "KROGER SAVINGS\n1.50\nGRND BF\n5.49 F"
	items := p.Parse(text)
	if len(items) != 2 {
		t.Fatalf("len=%d", len(items))
	}
	last := items[len(items)-1]
	if last.Name != "Total Kroger Savings" || last.Unit != "" || last.PricePer != 1.50 || last.Quantity != 1 {
		t.Fatalf("unexpected savings record: %+v", last)
	}
}

func TestParseSavingsAccumulate(t *testing.T) {
	p := NewParser(Options{})
	items := p.Parse("KROGER SAVINGS\n1.50\nKROGER SAVINGS\n0.89")
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].PricePer != 2.39 {
		t.Fatalf("savings=%v", items[0].PricePer)
	}
}

func TestParseSavingsMarkerWithoutAmount(t *testing.T) {
	p := NewParser(Options{})
	// Marker line with no decimal on the next line is skippable; the scan
	// must not stall and the item after it must still parse.
	items := p.Parse("KROGER SAVINGS\nGRND BF\n5.49 F")
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].Name != "GROUND BEEF" {
		t.Fatalf("name=%q", items[0].Name)
	}
}

func TestParseSkipsNonItemLines(t *testing.T) {
	p := NewParser(Options{})
	if items := p.Parse("TAX\n1.23 F"); len(items) != 0 {
		t.Fatalf("tax line produced items: %+v", items)
	}
	text := "BALANCE\n12.87\nAID: A0000000041010\nTC: 4F2A6B\nREF#: 001234\nCHANGE\n0.00\nVERIFIED BY PIN\nMASTERCARD\nSC KRO DIGITAL CPN\n0.50"
	if items := p.Parse(text); len(items) != 0 {
		t.Fatalf("footer lines produced items: %+v", items)
	}
}

func TestParseMultipackSuffix(t *testing.T) {
	p := NewParser(Options{})
	items := p.Parse("GREEK YOG 6PK\n4.49 F")
	if len(items) != 1 {
		t.Fatalf("len=%d", len(items))
	}
	got := items[0]
	if got.Name != "GREEK YOGURT" || got.Unit != "6PK" || got.PricePer != 4.49 || got.Quantity != 1 {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser(Options{})
	if items := p.Parse(""); len(items) != 0 {
		t.Fatalf("len=%d", len(items))
	}
}

func TestParseOrderPreserved(t *testing.T) {
	p := NewParser(Options{})
	text := "GRND BF\n5.49 F\nKROGER SAVINGS\n1.00\nGREEK YOG 6PK\n4.49 F\nWHL MILK\n2.79 B"
	items := p.Parse(text)
	want := []string{"GROUND BEEF", "GREEK YOGURT", "WHOLE MILK", "Total Kroger Savings"}
	if len(items) != len(want) {
		t.Fatalf("len=%d want %d: %+v", len(items), len(want), items)
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Fatalf("position %d: got %q want %q", i, items[i].Name, name)
		}
	}
}

func TestParseNameCleaningToEmptyConsumesPriceLine(t *testing.T) {
	p := NewParser(Options{})
	// "KRO F" cleans to nothing; its price line must still be consumed so it
	// cannot be misread as the next item name.
	items := p.Parse("KRO F\n2.00 F\nGRND BF\n5.49 F")
	if len(items) != 1 {
		t.Fatalf("len=%d: %+v", len(items), items)
	}
	if items[0].Name != "GROUND BEEF" {
		t.Fatalf("name=%q", items[0].Name)
	}
}

func TestParseUnmatchedLinesDropped(t *testing.T) {
	p := NewParser(Options{})
	// No price pattern anywhere: nothing to emit, no error.
	if items := p.Parse("THANK YOU FOR SHOPPING\nSTORE 00123\nCASHIER JANE"); len(items) != 0 {
		t.Fatalf("len=%d", len(items))
	}
}

func TestParseDifferentPricesStaySeparate(t *testing.T) {
	p := NewParser(Options{})
	items := p.Parse("GRND BF\n5.49 F\nGRND BF\n4.99 F")
	if len(items) != 2 {
		t.Fatalf("len=%d", len(items))
	}
	if items[0].PricePer != 5.49 || items[1].PricePer != 4.99 {
		t.Fatalf("prices: %+v", items)
	}
}

func TestParserOptionsOverrideRetailerFormat(t *testing.T) {
	p := NewParser(Options{
		DiscountMarker: "CARD SAVINGS",
		TenderCodes:    "XA",
		SavingsLabel:   "Total Card Savings",
	})
	text := "CARD SAVINGS\n0.75\nWHL MILK\n2.79 X"
	items := p.Parse(text)
	if len(items) != 2 {
		t.Fatalf("len=%d: %+v", len(items), items)
	}
	if items[0].Name != "WHOLE MILK" {
		t.Fatalf("name=%q", items[0].Name)
	}
	if items[1].Name != "Total Card Savings" || items[1].PricePer != 0.75 {
		t.Fatalf("savings: %+v", items[1])
	}
	// default tender letters must not match under the overridden set
	if got := p.Parse("WHL MILK\n2.79 F"); len(got) != 0 {
		t.Fatalf("default code matched: %+v", got)
	}
}

func TestParseFilterSoundness(t *testing.T) {
	p := NewParser(Options{})
	// A price line misread as a name must be filtered by the numeric-name
	// guard even when a tender-coded line follows it.
	items := p.Parse("3.99\n2.49 F")
	for _, item := range items {
		if item.Name == "" || item.PricePer <= 0 {
			t.Fatalf("filter let through: %+v", item)
		}
	}
	if len(items) != 0 {
		t.Fatalf("numeric name not filtered: %+v", items)
	}
}

func TestParseQuantitySumMatchesMatchedLines(t *testing.T) {
	p := NewParser(Options{})
	text := "GRND BF\n5.49 F\nGRND BF\n5.49 F\nGREEK YOG 6PK\n4.49 F"
	items := p.Parse(text)
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	if total != 3 {
		t.Fatalf("total quantity=%d", total)
	}
}
