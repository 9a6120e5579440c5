package bot

import (
	"fmt"

	"spesebot/internal/core"
)

const (
	usageHint      = "Send expense in format: " + core.CurrencySymbol + "250 Coffee"
	noPendingEntry = "No expense found to categorize."
)

func promptText(e core.PendingEntry) string {
	return fmt.Sprintf("Choose a category for %s%s - %s:", core.CurrencySymbol, e.Amount, e.Note)
}

func savedText(r core.ExpenseRecord) string {
	return fmt.Sprintf("Saved: %s%s - %s - %s", core.CurrencySymbol, r.Amount, r.Category, r.Note)
}

func saveFailedText(r core.ExpenseRecord) string {
	return fmt.Sprintf("Could not save %s%s - %s - %s, please send it again.", core.CurrencySymbol, r.Amount, r.Category, r.Note)
}

func unknownCategoryText(value string) string {
	return fmt.Sprintf("Unknown category: %s", value)
}

// categoryOptions lists every category as its own button, in display order.
func categoryOptions() []Option {
	cats := core.Categories()
	out := make([]Option, len(cats))
	for i, c := range cats {
		out[i] = Option{Label: c.String(), Value: c.String()}
	}
	return out
}
