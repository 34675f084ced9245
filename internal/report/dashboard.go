package report

import (
	"math"
	"time"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/queue"
	"github.com/shopspring/decimal"
)

type OperationStatus string

const (
	OperationCalm     OperationStatus = "calm"
	OperationActive   OperationStatus = "active"
	OperationBusy     OperationStatus = "busy"
	OperationOverload OperationStatus = "overload"
)

type Dashboard struct {
	Date               string          `json:"date"`
	TodayRevenue       decimal.Decimal `json:"today_revenue"`
	FinishedToday      int             `json:"finished_today"`
	ActiveGames        int             `json:"active_games"`
	QueueLength        int             `json:"queue_length"`
	AverageWaitMinutes int             `json:"average_wait_minutes"`
	// ConversionRate is the percentage of today's queued games already finished.
	ConversionRate int `json:"conversion_rate"`
	// PeakHour is the hour with most games finished today, empty before the first.
	PeakHour string `json:"peak_hour,omitempty"`
	// Efficiency compares expected against actual duration of today's finished games.
	Efficiency int             `json:"efficiency"`
	Status     OperationStatus `json:"status"`
}

// BuildDashboard summarises the operation on the calendar day of now.
// Revenue follows scope; the counters always use live statuses.
func BuildDashboard(games []domain.Game, now time.Time, scope Scope, d queue.Durations) Dashboard {
	today := now.Format(domain.DateLayout)
	db := Dashboard{Date: today, TodayRevenue: decimal.Zero}

	var (
		queuedToday   int
		hourCounts    = make(map[int]int)
		actualMinutes float64
		expected      float64
	)

	for _, g := range games {
		switch g.Status {
		case domain.StatusInProgress:
			db.ActiveGames++
		case domain.StatusWaiting:
			db.QueueLength++
		}

		if g.Date != today {
			continue
		}
		if scope.Includes(g) {
			db.TodayRevenue = db.TodayRevenue.Add(g.Value)
		}
		if g.Status != domain.StatusPaidOnly {
			queuedToday++
		}
		if g.Status != domain.StatusFinished {
			continue
		}

		db.FinishedToday++
		if g.FinishedAt != nil {
			hourCounts[g.FinishedAt.In(now.Location()).Hour()]++
		}
		if g.StartedAt != nil && g.FinishedAt != nil {
			actualMinutes += g.FinishedAt.Sub(*g.StartedAt).Minutes()
			expected += float64(d.Duration(g.GameTypeID))
		}
	}

	entries := queue.Entries(games, "", d)
	if len(entries) > 0 {
		var sum int
		for _, e := range entries {
			sum += e.WaitMinutes
		}
		db.AverageWaitMinutes = int(math.Round(float64(sum) / float64(len(entries))))
	}

	if queuedToday > 0 {
		db.ConversionRate = int(math.Round(float64(db.FinishedToday) / float64(queuedToday) * 100))
	}

	peak, best := -1, 0
	for h, n := range hourCounts {
		if n > best || (n == best && h < peak) {
			peak, best = h, n
		}
	}
	if peak >= 0 {
		db.PeakHour = time.Date(0, 1, 1, peak, 0, 0, 0, time.UTC).Format(domain.TimeLayout)
	}

	if expected > 0 && actualMinutes > 0 {
		db.Efficiency = int(math.Round(math.Min(100, expected/actualMinutes*100)))
	}

	switch {
	case db.QueueLength > 8:
		db.Status = OperationOverload
	case db.QueueLength > 4:
		db.Status = OperationBusy
	case db.ActiveGames > 0:
		db.Status = OperationActive
	default:
		db.Status = OperationCalm
	}

	return db
}
