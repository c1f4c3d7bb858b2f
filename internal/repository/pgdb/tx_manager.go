package pgdb

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// TxManager выполняет функцию в транзакции PostgreSQL.
// Транзакция кладётся в контекст, репозитории берут её через tr.QuerierFromCtx.
type TxManager struct {
	db transaction.Transactional
}

func NewTxManager(db transaction.Transactional) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "TxManager.Do"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.db)
	if err != nil {
		return e.Wrap(op, err)
	}

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return e.Wrap(op, fmt.Errorf("%w; rollback: %v", e.ErrTransactionNotFound, rbErr))
		}
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	return runInTx(tr.WithTx(ctx, pgxTx), tx, fn)
}

// txControl — часть транзакции trm, которой управляет runInTx.
type txControl interface {
	IsActive() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// runInTx фиксирует транзакцию, если fn завершилась без ошибки, и откатывает при ошибке
// или панике. Паника после отката пробрасывается дальше.
func runInTx(ctx context.Context, tx txControl, fn func(ctx context.Context) error) (err error) {
	const op = "TxManager.Do"

	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(context.WithoutCancel(ctx))
			}
			panic(p)
		}

		if err != nil && tx.IsActive() {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				err = fmt.Errorf("%w; rollback: %v", err, rbErr)
			}
		}
	}()

	if err = fn(ctx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
