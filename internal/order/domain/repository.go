package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// LoadTransactionGraph returns nil when the transaction does not exist.
	LoadTransactionGraph(ctx context.Context, db *gorm.DB, transactionID snowflake.ID) (*TransactionGraph, error)
}
