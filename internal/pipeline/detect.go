package pipeline

import (
	"regexp"
	"strings"
)

type DetectResult struct {
	IsReceipt bool
	Score     float64
	Reason    string
}

var detectKeywords = []string{"receipt", "order", "purchase", "total", "savings", "transaction", "thank you for shopping"}

var amountHit = regexp.MustCompile(`\d+\.\d{2}`)

// DetectReceipt scores whether a fetched message looks like an e-receipt.
// Rule-based: subject/body keywords, currency-amount density, PDF attachments.
func DetectReceipt(subject, text string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) {
			score += 0.1
		}
	}

	amountHits := len(amountHit.FindAllString(text, 6))
	if amountHits >= 3 {
		score += 0.4
	} else if amountHits >= 1 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		if strings.HasSuffix(strings.ToLower(name), ".pdf") {
			score += 0.25
			break
		}
	}

	if score > 1 {
		score = 1
	}

	isReceipt := score >= 0.45
	reason := "rules_negative"
	if isReceipt {
		reason = "rules_positive"
	}

	return DetectResult{IsReceipt: isReceipt, Score: score, Reason: reason}
}
