package services

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// queryer is satisfied by both *goqu.Database and *goqu.TxDatabase so the
// primitive writes can run standalone or inside a transaction.
type queryer interface {
	From(from ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// withTx runs fn in a single transaction, committing on nil and rolling back otherwise.
func withTx(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx.Wrap(func() error {
		return fn(tx)
	})
}

func newID() string {
	return uuid.NewString()
}

// validID reports whether id looks like one we issued; anything else can't exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
