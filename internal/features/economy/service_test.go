package economy_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/storage/kv"
	"serotonyl.ru/eco-bot/internal/storage/local"
)

func newService(t *testing.T) *economy.Service {
	t.Helper()
	return economy.NewService(local.New(kv.NewMemory()))
}

func TestAddAndDeduct(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.NoError(t, s.CreateBalance(ctx, 1))
	require.NoError(t, s.AddBalance(ctx, 1, 100, economy.TxTypeAdminGive, "выдача"))
	require.NoError(t, s.DeductBalance(ctx, 1, 30, economy.TxTypeAdminTake, "изъятие"))

	balance, err := s.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)

	txs, err := s.Transactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 2)
}

func TestAmountMustBePositive(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	assert.ErrorIs(t, s.AddBalance(ctx, 1, 0, economy.TxTypeAdminGive, ""), common.ErrInvalidAmount)
	assert.ErrorIs(t, s.DeductBalance(ctx, 1, -5, economy.TxTypeAdminTake, ""), common.ErrInvalidAmount)
}

func TestDeductNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	require.NoError(t, s.AddBalance(ctx, 1, 10, economy.TxTypeAdminGive, ""))

	err := s.DeductBalance(ctx, 1, 11, economy.TxTypeAdminTake, "")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	balance, err := s.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	require.NoError(t, s.AddBalance(ctx, 1, 60, economy.TxTypeAdminGive, ""))

	r, err := s.Redeem(ctx, 1, " SEEDS ")
	require.NoError(t, err)
	assert.Equal(t, "seeds", r.Voucher.Code)
	assert.True(t, strings.HasPrefix(r.Code, "SEEDS-"))
	assert.Equal(t, int64(10), r.Balance)

	_, err = s.Redeem(ctx, 1, "cup")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	_, err = s.Redeem(ctx, 1, "yacht")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindVoucher(t *testing.T) {
	v, ok := economy.FindVoucher("Tree")
	require.True(t, ok)
	assert.Equal(t, int64(300), v.Cost)

	_, ok = economy.FindVoucher("")
	assert.False(t, ok)
}
