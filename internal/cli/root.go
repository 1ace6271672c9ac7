// Package cli - команды ecoctl: тот же трекер эко-энзима, что и в боте,
// но из терминала. Данные лежат в локальном файле SQLite или на удалённом
// бэкенде (--remote), токен которого хранится в системном хранилище секретов.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/keyring"
	"serotonyl.ru/eco-bot/internal/logging"
	"serotonyl.ru/eco-bot/internal/storage/kv"
	"serotonyl.ru/eco-bot/internal/storage/local"
	"serotonyl.ru/eco-bot/internal/storage/remote"
)

const (
	envDB          = "ECOCTL_DB"
	envRemote      = "ECOCTL_REMOTE"
	defaultBonus   = 150
	defaultTZ      = "Europe/Moscow"
	defaultTimeout = 15 * time.Second
)

// annotationOffline помечает команды, которым не нужно хранилище.
const annotationOffline = "offline"

// runtime - состояние одного запуска: флаги и открытое хранилище.
type runtime struct {
	dbPath   string
	remote   string
	user     int64
	timezone string
	bonus    int64
	timeout  time.Duration
	verbose  bool

	loc      *time.Location
	projects *project.Service
	economy  *economy.Service
	client   *remote.Client // nil в локальном режиме
	closers  []func() error
	now      func() time.Time
}

// NewRootCommand собирает дерево команд ecoctl.
func NewRootCommand() *cobra.Command {
	return newRoot(&runtime{})
}

func newRoot(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "ecoctl",
		Short: "Трекер эко-энзима: журнал отходов, 90 дней ферментации, баллы",
		Long: `ecoctl ведёт проект эко-энзима из терминала.

Отходы записываются в журнал, затем запускается ферментация на 90 дней.
Каждый день отмечается чекином, раз в месяц прикладывается фото.
После 90 дней и полного таймлайна начисляется бонус.

По умолчанию данные хранятся локально. С --remote команды идут
на бэкенд, токен сохраняется командой login.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if rt.verbose {
				level = "debug"
			}
			if _, err := logging.Setup(logging.Options{Level: level, Stdout: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			if cmd.Annotations[annotationOffline] == "true" {
				return nil
			}
			return rt.open(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.dbPath, "db", envOr(envDB, defaultDBPath()), "Файл локального хранилища (или ECOCTL_DB)")
	flags.StringVar(&rt.remote, "remote", os.Getenv(envRemote), "Адрес удалённого бэкенда (или ECOCTL_REMOTE)")
	flags.Int64Var(&rt.user, "user", 1, "Идентификатор пользователя")
	flags.StringVar(&rt.timezone, "timezone", defaultTZ, "Часовой пояс для дней таймлайна")
	flags.Int64Var(&rt.bonus, "bonus", defaultBonus, "Бонус за завершённые 90 дней")
	flags.DurationVar(&rt.timeout, "timeout", defaultTimeout, "Таймаут запроса к бэкенду")
	flags.BoolVarP(&rt.verbose, "verbose", "v", false, "Подробные логи в stderr")

	root.AddCommand(
		statusCmd(rt),
		journalCmd(rt),
		startCmd(rt),
		checkinCmd(rt),
		photoCmd(rt),
		timelineCmd(rt),
		weekCmd(rt),
		claimCmd(rt),
		resetCmd(rt),
		pointsCmd(rt),
		loginCmd(rt),
		logoutCmd(rt),
		whoamiCmd(rt),
		hashPasswordCmd(),
	)
	return root
}

// open выбирает хранилище по флагам и собирает сервисы поверх него.
func (rt *runtime) open(ctx context.Context) error {
	loc, err := time.LoadLocation(rt.timezone)
	if err != nil {
		return fmt.Errorf("часовой пояс %q: %w", rt.timezone, err)
	}
	rt.loc = loc

	var (
		projects project.Repository
		balances economy.Repository
	)
	if rt.remote != "" {
		token, err := keyring.GetToken(rt.remote)
		if err != nil {
			return err
		}
		rt.client = remote.New(rt.remote, token, remote.WithTimeout(rt.timeout))
		projects, balances = rt.client, rt.client
		log.WithField("remote", rt.remote).Debug("Удалённое хранилище")
	} else {
		db, err := kv.OpenSQLite(ctx, rt.dbPath)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, db.Close)
		store := local.New(db)
		projects, balances = store, store
		log.WithField("db", rt.dbPath).Debug("Локальное хранилище")
	}

	rt.projects = project.NewService(projects, loc, rt.bonus)
	if rt.now != nil {
		rt.projects.SetClock(rt.now)
	}
	rt.economy = economy.NewService(balances)
	return nil
}

func (rt *runtime) close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// run оборачивает команду: хранилище закрывается и после ошибки.
func (rt *runtime) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		return errors.Join(err, rt.close())
	}
}

// Message превращает ошибку команды в текст для терминала.
func Message(err error) string {
	if msg, ok := common.UserMessage(err); ok {
		return "❌ " + msg
	}
	return "❌ " + err.Error()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ecoctl.db"
	}
	return filepath.Join(dir, "ecoctl", "eco.db")
}

func offline(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationOffline] = "true"
	return cmd
}
