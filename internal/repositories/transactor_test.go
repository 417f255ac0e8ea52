package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestWithinTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM order_items")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := NewTransactor(db).WithinTx(context.Background(), func(exec SQLExecutor) error {
		_, err := exec.ExecContext(context.Background(), "DELETE FROM order_items WHERE order_id = $1", 1)
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTransactor(db).WithinTx(context.Background(), func(exec SQLExecutor) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected the panic to propagate")
		}
	}()
	_ = NewTransactor(db).WithinTx(context.Background(), func(exec SQLExecutor) error {
		panic("unexpected")
	})
}
