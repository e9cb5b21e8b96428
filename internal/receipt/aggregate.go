package receipt

import (
	"regexp"
	"strconv"

	"pantrybill/internal"
)

// aggregator merges items sharing (name, unit, price) by summing quantity,
// preserving first-seen order. The synthetic savings record sits under a
// reserved key no product line can produce and is always appended last.
type aggregator struct {
	order []string
	items map[string]*internal.BillItem
}

const savingsKey = "\x00total-savings"

func newAggregator() *aggregator {
	return &aggregator{items: map[string]*internal.BillItem{}}
}

func itemKey(item internal.BillItem) string {
	return item.Name + "\x00" + item.Unit + "\x00" + strconv.FormatFloat(item.PricePer, 'f', 2, 64)
}

func (a *aggregator) add(item internal.BillItem) {
	key := itemKey(item)
	if existing, ok := a.items[key]; ok {
		existing.Quantity += item.Quantity
		return
	}
	copied := item
	a.items[key] = &copied
	a.order = append(a.order, key)
}

func (a *aggregator) addSynthetic(item internal.BillItem) {
	copied := item
	a.items[savingsKey] = &copied
	a.order = append(a.order, savingsKey)
}

var numericName = regexp.MustCompile(`^\d+\.\d+$`)

// finish applies the result filter: no empty names, no non-positive prices,
// and no names that are really a misread price line.
func (a *aggregator) finish() []internal.BillItem {
	out := make([]internal.BillItem, 0, len(a.order))
	for _, key := range a.order {
		item := a.items[key]
		if item.Name == "" || item.PricePer <= 0 || numericName.MatchString(item.Name) {
			continue
		}
		out = append(out, *item)
	}
	return out
}
