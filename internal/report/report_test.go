package report

import (
	"testing"
	"time"

	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(client string, value int64, date string, status domain.GameStatus) domain.Game {
	return domain.Game{
		ID:             client + date,
		ClientName:     client,
		GameTypeID:     "3",
		PractitionerID: "1",
		Value:          decimal.NewFromInt(value),
		Date:           date,
		PaymentTime:    "10:00",
		Status:         status,
	}
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load("")
	require.NoError(t, err)
	return c
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestClients_Maria(t *testing.T) {
	games := []domain.Game{
		game("Maria", 50, "2024-01-11", domain.StatusFinished),
		game("maria ", 30, "2024-01-01", domain.StatusFinished),
	}

	clients := Clients(games, ScopeFinished)
	require.Len(t, clients, 1)

	c := clients[0]
	assert.Equal(t, "maria", c.Key)
	assert.Equal(t, 2, c.TotalGames)
	assert.True(t, c.TotalSpent.Equal(decimal.NewFromInt(80)))
	require.NotNil(t, c.AverageFrequency)
	assert.InDelta(t, 10.0, *c.AverageFrequency, 1e-9)
	assert.Equal(t, []string{"2024-01-01", "2024-01-11"}, c.GameDates)
	assert.Equal(t, "2024-01-11", c.LastGame)
}

func TestClients_ScopeDecidesWhatCounts(t *testing.T) {
	games := []domain.Game{
		game("Ana", 30, "2024-01-01", domain.StatusFinished),
		game("ANA", 20, "2024-01-05", domain.StatusWaiting),
		game("Bia", 100, "2024-01-02", domain.StatusPaidOnly),
	}

	finished := Clients(games, ScopeFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, "ana", finished[0].Key)
	assert.True(t, finished[0].TotalSpent.Equal(decimal.NewFromInt(30)))
	assert.Nil(t, finished[0].AverageFrequency)

	all := Clients(games, ScopeAll)
	require.Len(t, all, 2)
	assert.Equal(t, "bia", all[0].Key)
	assert.Equal(t, "ana", all[1].Key)
	assert.True(t, all[1].TotalSpent.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 2, all[1].TotalGames)
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeFinished, s)

	s, err = ParseScope(" ALL ")
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, s)

	_, err = ParseScope("paid")
	assert.Error(t, err)
}

func TestBuildFinancial(t *testing.T) {
	cat := defaultCatalog(t)

	a := game("Ana", 30, "2024-01-01", domain.StatusFinished)
	b := game("Bia", 50, "2024-01-02", domain.StatusFinished)
	b.PractitionerID = "2"
	b.GameTypeID = "5"
	c := game("Ana", 25, "2024-01-02", domain.StatusFinished)
	outside := game("Caio", 40, "2024-02-01", domain.StatusFinished)
	open := game("Dani", 40, "2024-01-02", domain.StatusWaiting)

	f := BuildFinancial([]domain.Game{a, b, c, outside, open}, ScopeFinished,
		Period{From: "2024-01-01", To: "2024-01-31"}, cat)

	assert.Equal(t, 3, f.Games)
	assert.True(t, f.TotalRevenue.Equal(decimal.NewFromInt(105)))
	assert.True(t, f.AverageTicket.Equal(dec("35")))

	require.Len(t, f.ByPractitioner, 2)
	assert.Equal(t, "Vanessa Barreto", f.ByPractitioner[0].Name)
	assert.True(t, f.ByPractitioner[0].Revenue.Equal(decimal.NewFromInt(55)))

	require.Len(t, f.ByDate, 2)
	assert.Equal(t, "2024-01-01", f.ByDate[0].Key)
	assert.Equal(t, 2, f.ByDate[1].Games)

	require.NotEmpty(t, f.TopClients)
	assert.Equal(t, "ana", f.TopClients[0].Key)

	empty := BuildFinancial(nil, ScopeFinished, Period{}, cat)
	assert.True(t, empty.AverageTicket.IsZero())
}

func TestBuildProfit(t *testing.T) {
	cat := defaultCatalog(t)

	principal := game("Ana", 40, "2024-01-01", domain.StatusFinished)
	affiliate := game("Bia", 60, "2024-01-01", domain.StatusFinished)
	affiliate.PractitionerID = "2"

	spend := []domain.CampaignSpend{{Name: "promo", Spend: decimal.NewFromInt(20)}}

	p := BuildProfit([]domain.Game{principal, affiliate}, ScopeFinished, Period{}, cat, spend)
	assert.True(t, p.Revenue.Equal(decimal.NewFromInt(100)))
	assert.True(t, p.AffiliatePayout.Equal(decimal.NewFromInt(30)))
	assert.True(t, p.AdSpend.Equal(decimal.NewFromInt(20)))
	assert.True(t, p.TotalCosts.Equal(decimal.NewFromInt(50)))
	assert.True(t, p.NetProfit.Equal(decimal.NewFromInt(50)))
	assert.True(t, p.MarginPercent.Equal(decimal.NewFromInt(50)))

	require.Len(t, p.ByPractitioner, 2)
	assert.True(t, p.ByPractitioner[1].Retained.Equal(decimal.NewFromInt(30)))

	none := BuildProfit(nil, ScopeFinished, Period{}, cat, nil)
	assert.True(t, none.MarginPercent.IsZero())
}

func TestCampaigns(t *testing.T) {
	a := game("Ana", 30, "2024-01-01", domain.StatusFinished)
	a.Campaign = "Promo Verão 2024"
	b := game("Bia", 50, "2024-01-02", domain.StatusFinished)
	b.Campaign = "promo verão"
	c := game("Caio", 20, "2024-01-02", domain.StatusFinished)
	c.Campaign = "Instagram"
	d := game("Dani", 99, "2024-01-02", domain.StatusWaiting)
	d.Campaign = "promo verão"

	spend := []domain.CampaignSpend{
		{Name: "PROMO VERÃO", Spend: decimal.NewFromInt(40)},
		{Name: "Natal", Spend: decimal.NewFromInt(10)},
		{Name: "Free", Spend: decimal.Zero},
	}

	out := Campaigns([]domain.Game{a, b, c, d}, ScopeFinished, Period{}, spend)
	require.Len(t, out, 4)

	promo := out[0]
	assert.Equal(t, 2, promo.Conversions)
	assert.True(t, promo.Revenue.Equal(decimal.NewFromInt(80)))
	require.NotNil(t, promo.ROAS)
	assert.True(t, promo.ROAS.Equal(dec("2")))

	natal := out[1]
	assert.Zero(t, natal.Conversions)
	require.NotNil(t, natal.ROAS)
	assert.True(t, natal.ROAS.IsZero())

	assert.Nil(t, out[2].ROAS)

	insta := out[3]
	assert.Equal(t, "Instagram", insta.Campaign)
	assert.Nil(t, insta.ROAS)
	assert.True(t, insta.Revenue.Equal(decimal.NewFromInt(20)))
}

func TestExportFinished(t *testing.T) {
	a := game("Ana", 30, "2024-01-03", domain.StatusFinished)
	b := game("Bia", 30, "2024-01-01", domain.StatusFinished)
	b.PaymentTime = "11:00"
	c := game("Caio", 30, "2024-01-01", domain.StatusFinished)
	c.PaymentTime = "09:00"
	other := game("Dani", 30, "2024-01-02", domain.StatusFinished)
	other.PractitionerID = "2"
	open := game("Edu", 30, "2024-01-02", domain.StatusInProgress)
	late := game("Fabi", 30, "2024-02-01", domain.StatusFinished)

	out := ExportFinished([]domain.Game{a, b, c, other, open, late},
		Period{From: "2024-01-01", To: "2024-01-31"}, "1")

	names := make([]string, len(out))
	for i, g := range out {
		names[i] = g.ClientName
	}
	assert.Equal(t, []string{"Caio", "Bia", "Ana"}, names)
}

func TestBuildDashboard(t *testing.T) {
	cat := defaultCatalog(t)
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	started := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	ended := started.Add(30 * time.Minute)

	done := game("Ana", 30, "2024-03-10", domain.StatusFinished)
	done.GameTypeID = "3" // 15 minutes
	done.StartedAt, done.FinishedAt = &started, &ended

	active := game("Bia", 25, "2024-03-10", domain.StatusInProgress)
	w1 := game("Caio", 10, "2024-03-10", domain.StatusWaiting)
	w1.GameTypeID = "1"
	w2 := game("Dani", 10, "2024-03-10", domain.StatusWaiting)
	w2.GameTypeID = "1"
	w2.PaymentTime = "10:05"
	paid := game("Edu", 99, "2024-03-10", domain.StatusPaidOnly)
	yesterday := game("Fabi", 70, "2024-03-09", domain.StatusFinished)

	games := []domain.Game{done, active, w1, w2, paid, yesterday}

	db := BuildDashboard(games, now, ScopeFinished, cat)
	assert.Equal(t, "2024-03-10", db.Date)
	assert.True(t, db.TodayRevenue.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 1, db.FinishedToday)
	assert.Equal(t, 1, db.ActiveGames)
	assert.Equal(t, 2, db.QueueLength)
	assert.Equal(t, 5, db.AverageWaitMinutes)
	assert.Equal(t, 25, db.ConversionRate)
	assert.Equal(t, "14:00", db.PeakHour)
	assert.Equal(t, 50, db.Efficiency)
	assert.Equal(t, OperationActive, db.Status)

	all := BuildDashboard(games, now, ScopeAll, cat)
	assert.True(t, all.TodayRevenue.Equal(decimal.NewFromInt(174)))

	quiet := BuildDashboard(nil, now, ScopeFinished, cat)
	assert.Equal(t, OperationCalm, quiet.Status)
	assert.Empty(t, quiet.PeakHour)
}
