package worker

// lowstock_monitor.go
// Background goroutine that periodically checks inventory for products below
// their minimum quantity and raises a warning.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bebidaspos/internal/dto"

	"github.com/rs/zerolog/log"
)

// LowStockTitle heads every low stock notice.
const LowStockTitle = "Alerta de estoque baixo"

// lowStockPreview is how many products are named before the "e mais" suffix.
const lowStockPreview = 3

// LowStockSource lists the products currently below their minimum.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]dto.LowStockAlertResponse, error)
}

// LowStockSummary formats alerts as "name: current/min" joined by ", ",
// naming at most three products. Returns "" when there is nothing to report.
func LowStockSummary(alerts []dto.LowStockAlertResponse) string {
	if len(alerts) == 0 {
		return ""
	}
	n := min(len(alerts), lowStockPreview)
	parts := make([]string, 0, n)
	for _, a := range alerts[:n] {
		parts = append(parts, fmt.Sprintf("%s: %d/%d", a.Name, a.CurrentQuantity, a.MinQuantity))
	}
	s := strings.Join(parts, ", ")
	if extra := len(alerts) - n; extra > 0 {
		s += fmt.Sprintf(" e mais %d itens", extra)
	}
	return s
}

// LowStockNotifier receives each non-empty summary.
type LowStockNotifier func(title, summary string, count int)

// StartLowStockMonitor runs one check immediately and then every interval
// until ctx is cancelled. notify may be nil, in which case summaries are
// only logged.
func StartLowStockMonitor(ctx context.Context, src LowStockSource, interval time.Duration, notify LowStockNotifier) {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("lowstock_monitor: started")
		checkLowStock(ctx, src, notify)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("lowstock_monitor: shutting down")
				return
			case <-ticker.C:
				checkLowStock(ctx, src, notify)
			}
		}
	}()
}

func checkLowStock(ctx context.Context, src LowStockSource, notify LowStockNotifier) {
	alerts, err := src.LowStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("lowstock_monitor: failed to query inventory")
		return
	}
	summary := LowStockSummary(alerts)
	if summary == "" {
		return
	}
	log.Warn().Int("count", len(alerts)).Str("summary", summary).Msg(LowStockTitle)
	if notify != nil {
		notify(LowStockTitle, summary, len(alerts))
	}
}
