package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"pantrybill/internal"
	"pantrybill/internal/util"
)

// Options carry the retailer-specific parts of the receipt format. The
// defaults match the Kroger layout the heuristics were tuned on; other chains
// use different tender letters and savings phrasing, so these are configured
// rather than hard-coded.
type Options struct {
	// DiscountMarker is the case-insensitive phrase identifying a store
	// savings line. The amount is expected on the following line.
	DiscountMarker string
	// TenderCodes are the single letters accepted immediately after a price
	// on an item's price line.
	TenderCodes string
	// SavingsLabel names the synthetic record holding the accumulated
	// discount total.
	SavingsLabel string
}

func (o Options) withDefaults() Options {
	if o.DiscountMarker == "" {
		o.DiscountMarker = "KROGER SAVINGS"
	}
	if o.TenderCodes == "" {
		o.TenderCodes = "FB6T"
	}
	if o.SavingsLabel == "" {
		o.SavingsLabel = "Total Kroger Savings"
	}
	return o
}

// Parser turns noisy point-of-sale text into a deduplicated item list. It is
// stateless across calls; one Parser may serve concurrent invocations.
type Parser struct {
	marker       string
	savingsLabel string
	priceLine    *regexp.Regexp
}

func NewParser(opts Options) *Parser {
	opts = opts.withDefaults()
	return &Parser{
		marker:       strings.ToUpper(opts.DiscountMarker),
		savingsLabel: opts.SavingsLabel,
		priceLine:    regexp.MustCompile(`(\d+\.\d+)\s*[` + regexp.QuoteMeta(strings.ToUpper(opts.TenderCodes)) + `]`),
	}
}

// Parse runs a single left-to-right scan over the transcript. Item lines are
// recognized by a price-plus-tender-code pattern on the following line;
// matched pairs consume two lines, everything else consumes one. Lines that
// match nothing are dropped without error; this is a lossy heuristic by
// contract.
func (p *Parser) Parse(rawText string) []internal.BillItem {
	lines := SplitLines(rawText)
	agg := newAggregator()
	savings := 0.0

	for i := 0; i < len(lines); i++ {
		cur := lines[i].Text
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1].Text
		}
		if cur == "" {
			continue
		}

		if strings.Contains(strings.ToUpper(cur), p.marker) {
			if amount, ok := util.FindAmount(next); ok {
				savings += amount
				i++ // amount line consumed
			}
			// marker without an amount is just a skippable line
			continue
		}

		if isSkippable(cur) {
			continue
		}

		m := p.priceLine.FindStringSubmatch(next)
		if m == nil {
			continue
		}

		name, unit := splitMultipack(cur)
		name = CleanName(name)
		i++ // price line consumed even when the name cleans away
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		agg.add(internal.BillItem{Name: name, Unit: unit, PricePer: price, Quantity: 1})
	}

	if savings > 0 {
		agg.addSynthetic(internal.BillItem{
			Name:     p.savingsLabel,
			Unit:     "",
			PricePer: util.RoundCents(savings),
			Quantity: 1,
		})
	}

	return agg.finish()
}
