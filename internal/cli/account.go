package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/admin"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/keyring"
	"serotonyl.ru/eco-bot/internal/storage/remote"
)

var errNoRemote = errors.New("адрес бэкенда не задан: укажите --remote или ECOCTL_REMOTE")

func pointsCmd(rt *runtime) *cobra.Command {
	var history bool
	points := &cobra.Command{
		Use:   "points",
		Short: "Баланс баллов",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			balance, err := rt.economy.GetBalance(ctx, rt.user)
			if err != nil {
				return err
			}
			if err := printLine(cmd, economy.FormatBalance(balance)); err != nil {
				return err
			}
			if !history {
				return nil
			}
			txs, err := rt.economy.Transactions(ctx, rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, "\n"+economy.FormatHistory(txs, rt.loc))
		}),
	}
	points.Flags().BoolVar(&history, "history", false, "Показать последние операции")

	points.AddCommand(&cobra.Command{
		Use:   "vouchers",
		Short: "Каталог ваучеров",
		Args:  cobra.NoArgs,
		RunE: rt.run(func(cmd *cobra.Command, _ []string) error {
			balance, err := rt.economy.GetBalance(cmd.Context(), rt.user)
			if err != nil {
				return err
			}
			return printLine(cmd, economy.FormatCatalog(balance))
		}),
	})

	points.AddCommand(&cobra.Command{
		Use:   "redeem <код>",
		Short: "Обменять баллы на ваучер",
		Args:  cobra.ExactArgs(1),
		RunE: rt.run(func(cmd *cobra.Command, args []string) error {
			r, err := rt.economy.Redeem(cmd.Context(), rt.user, args[0])
			if err != nil {
				return err
			}
			return printLine(cmd, economy.FormatRedemption(r))
		}),
	})
	return points
}

func loginCmd(rt *runtime) *cobra.Command {
	return offline(&cobra.Command{
		Use:   "login <токен>",
		Short: "Сохранить токен бэкенда в системном хранилище",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.remote == "" {
				return errNoRemote
			}
			// Токен проверяется до сохранения: неверный не попадёт в хранилище
			id, err := rt.identity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := keyring.SetToken(rt.remote, args[0]); err != nil {
				return err
			}
			return printLine(cmd, fmt.Sprintf("✅ Вход выполнен: %s", id.Username))
		},
	})
}

func logoutCmd(rt *runtime) *cobra.Command {
	return offline(&cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.remote == "" {
				return errNoRemote
			}
			err := keyring.DeleteToken(rt.remote)
			if errors.Is(err, keyring.ErrNotFound) {
				return printLine(cmd, "Токен не был сохранён")
			}
			if err != nil {
				return err
			}
			return printLine(cmd, "👋 Токен удалён")
		},
	})
}

func whoamiCmd(rt *runtime) *cobra.Command {
	return offline(&cobra.Command{
		Use:   "whoami",
		Short: "Пользователь, от имени которого идут команды",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rt.remote == "" {
				return printLine(cmd, fmt.Sprintf("Локальный режим: пользователь %d, файл %s", rt.user, rt.dbPath))
			}
			token, err := keyring.GetToken(rt.remote)
			if err != nil {
				return err
			}
			id, err := rt.identity(cmd.Context(), token)
			if err != nil {
				return err
			}
			return printLine(cmd, fmt.Sprintf("👤 %s <%s>\n💰 %s", id.Username, id.Email, common.FormatBalance(id.TotalPoints)))
		},
	})
}

func hashPasswordCmd() *cobra.Command {
	return offline(&cobra.Command{
		Use:   "hash-password <пароль>",
		Short: "Хеш пароля для ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := admin.HashPassword(args[0])
			if err != nil {
				return err
			}
			return printLine(cmd, hash)
		},
	})
}

func (rt *runtime) identity(ctx context.Context, token string) (*remote.Identity, error) {
	return remote.New(rt.remote, token, remote.WithTimeout(rt.timeout)).Me(ctx)
}
