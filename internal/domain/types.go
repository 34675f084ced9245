package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// maxMoney bounds amounts to what a numeric(12,2) column holds.
var maxMoney = decimal.New(1, 10)

// MoneyFits reports whether v is below 10^10 in magnitude and has no more
// than two significant decimal places.
func MoneyFits(v decimal.Decimal) bool {
	return v.Abs().LessThan(maxMoney) && v.Equal(v.Round(2))
}

type Practitioner struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// CommissionMultiplier is the fraction of a game's value retained by the business.
	CommissionMultiplier decimal.Decimal `json:"commission_multiplier" yaml:"commission_multiplier"`
}

// Affiliate reports whether part of the value is paid out to the practitioner.
func (p Practitioner) Affiliate() bool {
	return p.CommissionMultiplier.LessThan(decimal.NewFromInt(1))
}

// Payout is the part of value owed to the practitioner.
func (p Practitioner) Payout(value decimal.Decimal) decimal.Decimal {
	return value.Sub(value.Mul(p.CommissionMultiplier))
}

type GameType struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	BasePrice       decimal.Decimal `json:"base_price" yaml:"base_price"`
	DurationMinutes int             `json:"duration_minutes" yaml:"duration_minutes"`
}

type Game struct {
	ID               string          `json:"id"`
	ClientName       string          `json:"client_name"`
	GameTypeID       string          `json:"game_type_id"`
	PractitionerID   string          `json:"practitioner_id"`
	Value            decimal.Decimal `json:"value"`
	Date             string          `json:"date"`
	PaymentTime      string          `json:"payment_time"`
	Status           GameStatus      `json:"status"`
	Campaign         string          `json:"campaign,omitempty"`
	ConversationLink string          `json:"conversation_link,omitempty"`
	QueuePosition    *int            `json:"queue_position,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PaidAt combines Date and PaymentTime. Malformed values yield the zero time.
func (g Game) PaidAt() time.Time {
	t, err := time.Parse(DateLayout+" "+TimeLayout, g.Date+" "+g.PaymentTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a copy that shares no pointers with g.
func (g Game) Clone() Game {
	cp := g
	if g.QueuePosition != nil {
		v := *g.QueuePosition
		cp.QueuePosition = &v
	}
	if g.StartedAt != nil {
		v := *g.StartedAt
		cp.StartedAt = &v
	}
	if g.FinishedAt != nil {
		v := *g.FinishedAt
		cp.FinishedAt = &v
	}
	return cp
}

type Client struct {
	Key        string          `json:"key"`
	Name       string          `json:"name"`
	TotalGames int             `json:"total_games"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	GameDates  []string        `json:"game_dates"`
	// AverageFrequency is the mean number of days between visits; nil below two visits.
	AverageFrequency *float64 `json:"average_frequency,omitempty"`
	LastGame         string   `json:"last_game"`
}

type CampaignSpend struct {
	Name      string          `json:"name"`
	Spend     decimal.Decimal `json:"spend"`
	UpdatedAt time.Time       `json:"updated_at"`
}
