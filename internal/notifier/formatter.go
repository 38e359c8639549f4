package notifier

import (
	"fmt"
	"strings"

	"PriceHistorian/internal/backfill"
	"PriceHistorian/internal/model"
)

// FormatRunReport formats a reconciliation result into a Telegram message.
func FormatRunReport(res *backfill.Result) string {
	var b strings.Builder

	if res.Aborted {
		b.WriteString("❌ <b>PriceHistorian run aborted</b>\n\n")
	} else {
		b.WriteString("✅ <b>PriceHistorian run complete</b>\n\n")
	}

	b.WriteString(fmt.Sprintf("Last known: %s\n", res.LastKnown.Format(model.DateFormat)))
	b.WriteString(fmt.Sprintf("Target: %s\n", res.Target.Format(model.DateFormat)))
	b.WriteString(fmt.Sprintf("New points: %d\n", len(res.Added)))

	if len(res.Added) > 0 {
		latest := res.Added[len(res.Added)-1]
		b.WriteString(fmt.Sprintf("Latest: %s @ %s\n", latest.Day.Format(model.DateFormat), latest.PriceText()))
	}
	if len(res.Skipped) > 0 {
		days := make([]string, 0, len(res.Skipped))
		for _, d := range res.Skipped {
			days = append(days, d.Format(model.DateFormat))
		}
		b.WriteString(fmt.Sprintf("Skipped (no data): %s\n", strings.Join(days, ", ")))
	}
	if res.AbortErr != nil {
		b.WriteString(fmt.Sprintf("\nTransport failure: %v\n", res.AbortErr))
	}
	return b.String()
}
