package dashboard

import (
	"context"
	"strconv"
	"time"

	"erp-backend/internal/inventory"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LedgerReader is the slice of the inventory service the chart needs.
type LedgerReader interface {
	LedgerForRange(ctx context.Context, r inventory.DateRange, types ...models.LedgerType) ([]models.StockLedgerEntry, error)
}

type StockChartPoint struct {
	Label      string                    `json:"label"` // bucket start, YYYY-MM-DD
	Quantities map[models.LedgerType]int `json:"quantities"`
	Movements  int                       `json:"movements"`
	NetTotal   int                       `json:"net_total"` // change of total stock in the bucket
}

type StockChartResponse struct {
	Period      string                    `json:"period"` // daily | weekly | monthly
	From        string                    `json:"from"`
	To          string                    `json:"to"` // exclusive
	Points      []StockChartPoint         `json:"points"`
	GrandTotals map[models.LedgerType]int `json:"grand_totals"`
}

var chartTypes = []models.LedgerType{
	models.LedgerStockIn,
	models.LedgerStockOut,
	models.LedgerLoan,
	models.LedgerReturn,
	models.LedgerAdjustmentIn,
	models.LedgerAdjustmentOut,
}

func emptyQuantities() map[models.LedgerType]int {
	m := make(map[models.LedgerType]int, len(chartTypes))
	for _, t := range chartTypes {
		m[t] = 0
	}
	return m
}

// netTotal is the signed effect of an entry on total stock.
func netTotal(e models.StockLedgerEntry) int {
	switch e.Type {
	case models.LedgerStockIn, models.LedgerAdjustmentIn:
		return e.Quantity
	case models.LedgerStockOut, models.LedgerAdjustmentOut:
		return -e.Quantity
	}
	return 0
}

// chartWindow returns the first bucket start, the exclusive end and the step.
func chartWindow(period string, count int, now time.Time) (time.Time, time.Time, func(time.Time) time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case "weekly":
		monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
		start := monday.AddDate(0, 0, -7*(count-1))
		return start, monday.AddDate(0, 0, 7), func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case "monthly":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start := first.AddDate(0, -(count - 1), 0)
		return start, first.AddDate(0, 1, 0), func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		start := today.AddDate(0, 0, -(count - 1))
		return start, today.AddDate(0, 0, 1), func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	}
}

// BuildStockChart buckets entries into consecutive periods starting at start.
// Every bucket is present in the result, empty ones included.
func BuildStockChart(entries []models.StockLedgerEntry, start, end time.Time, next func(time.Time) time.Time) ([]StockChartPoint, map[models.LedgerType]int) {
	var bounds []time.Time
	for t := start; t.Before(end); t = next(t) {
		bounds = append(bounds, t)
	}
	points := make([]StockChartPoint, len(bounds))
	for i, b := range bounds {
		points[i] = StockChartPoint{Label: b.Format("2006-01-02"), Quantities: emptyQuantities()}
	}
	totals := emptyQuantities()

	for _, e := range entries {
		d := e.Date.UTC()
		if d.Before(start) || !d.Before(end) {
			continue
		}
		// last bucket whose start is not after d
		i := len(bounds) - 1
		for i > 0 && bounds[i].After(d) {
			i--
		}
		p := &points[i]
		p.Quantities[e.Type] += e.Quantity
		p.Movements++
		p.NetTotal += netTotal(e)
		totals[e.Type] += e.Quantity
	}
	return points, totals
}

// GET /api/dashboard/stock-chart?period=daily&count=7&type=STOCK_IN
func StockChartHandler(ledger LedgerReader, now func() time.Time) fiber.Handler {
	if now == nil {
		now = time.Now
	}
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		var count int
		switch period {
		case "weekly":
			count = 8
		case "monthly":
			count = 12
		case "daily":
			count = 7
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}
		if s := c.Query("count"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
			}
			count = n
		}

		var types []models.LedgerType
		if s := c.Query("type"); s != "" {
			t := models.LedgerType(s)
			if _, ok := emptyQuantities()[t]; !ok {
				return fiber.NewError(fiber.StatusBadRequest, "unknown ledger type")
			}
			types = append(types, t)
		}

		start, end, next := chartWindow(period, count, now())
		entries, err := ledger.LedgerForRange(c.UserContext(), inventory.DateRange{From: start, To: end}, types...)
		if err != nil {
			return err
		}

		points, totals := BuildStockChart(entries, start, end, next)
		return c.JSON(StockChartResponse{
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: totals,
		})
	}
}
