package httpgin

import (
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateGameRequest struct {
	ClientName     string `json:"client_name" binding:"required"`
	GameTypeID     string `json:"game_type_id" binding:"required"`
	PractitionerID string `json:"practitioner_id" binding:"required"`
	// Value defaults to the game type base price.
	Value            *decimal.Decimal `json:"value" swaggertype:"string"`
	Date             string           `json:"date" binding:"required"`
	PaymentTime      string           `json:"payment_time" binding:"required"`
	Status           string           `json:"status" binding:"omitempty,oneof=waiting paid_only"`
	Campaign         string           `json:"campaign"`
	ConversationLink string           `json:"conversation_link" binding:"omitempty,url"`
}

type MoveRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

type SetSpendRequest struct {
	Spend decimal.Decimal `json:"spend" swaggertype:"string"`
}

type CatalogResponse struct {
	Practitioners []domain.Practitioner `json:"practitioners"`
	GameTypes     []domain.GameType     `json:"game_types"`
}

type WaitResponse struct {
	GameID      string `json:"game_id"`
	Position    int    `json:"position"`
	WaitMinutes int    `json:"wait_minutes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
