package recipe

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Link        string          `json:"link"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
