package remote

import (
	"context"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
)

// EnsureBalance ничего не делает: баланс ведёт бэкенд.
func (c *Client) EnsureBalance(context.Context, int64) error {
	return nil
}

// GetBalance возвращает total_points из /auth/me.
func (c *Client) GetBalance(ctx context.Context, _ int64) (int64, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return 0, err
	}
	return me.TotalPoints, nil
}

// AddBalance не поддерживается: начисления выполняет бэкенд.
func (c *Client) AddBalance(context.Context, int64, int64, string, string) error {
	return common.ErrUnsupported
}

// DeductBalance не поддерживается: списания выполняет бэкенд.
func (c *Client) DeductBalance(context.Context, int64, int64, string, string) error {
	return common.ErrUnsupported
}

// GetTransactions: бэкенд не отдаёт историю через этот API.
func (c *Client) GetTransactions(context.Context, int64, int) ([]*economy.Transaction, error) {
	return nil, nil
}
