package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the database model for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	Name         string    `bun:"name,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsStaff      bool      `bun:"is_staff,notnull,default:false"`
	IsSuperuser  bool      `bun:"is_superuser,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Recipe is the database model for the recipes table.
// UserID is set once at insert time and never touched by updates.
type Recipe struct {
	bun.BaseModel `bun:"table:recipes,alias:r"`

	ID          uuid.UUID       `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()"`
	UserID      uuid.UUID       `bun:"user_id,notnull,type:uuid"`
	Title       string          `bun:"title,notnull"`
	TimeMinutes int             `bun:"time_minutes,notnull"`
	Price       decimal.Decimal `bun:"price,notnull,type:numeric(8,2)"`
	Description string          `bun:"description"`
	Link        string          `bun:"link"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
