package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/internal/usecase/mocks"
)

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()

	called := false
	err := usecase.NewUnitOfWork(txMgr, nil).Do(context.Background(), func(ctx context.Context, got usecase.Transaction) error {
		called = true
		require.Equal(t, tx, got)
		_, hasDeadline := ctx.Deadline()
		require.True(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	boom := errors.New("boom")
	err := usecase.NewUnitOfWork(txMgr, nil).Do(context.Background(), func(context.Context, usecase.Transaction) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestUnitOfWork_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)

	beginErr := errors.New("pool exhausted")
	txMgr.EXPECT().Begin(gomock.Any()).Return(nil, beginErr)

	err := usecase.NewUnitOfWork(txMgr, nil).Do(context.Background(), func(context.Context, usecase.Transaction) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	require.ErrorIs(t, err, beginErr)
}

func TestUnitOfWork_RunsThroughRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	retrier := mocks.NewMockRetrier(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op func() error) error {
		if err := op(); err == nil {
			t.Fatal("expected first attempt to fail")
		}
		return op()
	})

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil).Times(2)
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).Times(2)

	attempts := 0
	err := usecase.NewUnitOfWork(txMgr, retrier).Do(context.Background(), func(context.Context, usecase.Transaction) error {
		attempts++
		if attempts == 1 {
			return errors.New("deadlock")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestUnitOfWork_DeadlineExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uow := usecase.NewUnitOfWork(txMgr, nil).WithTimeout(5 * time.Millisecond)
	err := uow.Do(context.Background(), func(ctx context.Context, _ usecase.Transaction) error {
		<-ctx.Done()
		return errors.New("conn closed")
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
