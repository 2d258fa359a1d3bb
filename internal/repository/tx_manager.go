package repository

import (
	"context"

	"gorm.io/gorm"
)

// txKeyType is unexported so no other package can forge the context value.
type txKeyType struct{}

var txKey txKeyType

// TransactionManager runs a function with a gorm transaction injected into
// its context. Repositories pick the transaction up through GetDB, so a
// multi-step write (e.g. recording a tax payment against the year's policy
// row) commits or rolls back as one unit without the repositories knowing
// they are inside a transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type txManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &txManager{db: db}
}

func (m *txManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// GetDB returns the transaction carried by ctx when there is one, and the
// root handle otherwise. Every repository method routes its queries through
// this, which is what makes them transaction-agnostic.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
