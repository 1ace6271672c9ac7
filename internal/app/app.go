// Package app инициализирует все компоненты приложения.
// app.go - точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/bot"
	"serotonyl.ru/eco-bot/internal/bot/filters"
	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/config"
	"serotonyl.ru/eco-bot/internal/db/postgres"
	"serotonyl.ru/eco-bot/internal/features/admin"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/members"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/summary"
	"serotonyl.ru/eco-bot/internal/features/tree"
	"serotonyl.ru/eco-bot/internal/jobs"
	pgstore "serotonyl.ru/eco-bot/internal/storage/postgres"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Telegram  *bot.Telegram

	updateTimeout int
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен - компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := common.LoadLocation(cfg.AppTimezone)

	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	tg, err := bot.NewTelegram(cfg.TelegramBotToken, cfg.AppEnv == "development")
	if err != nil {
		pool.Close()
		return nil, err
	}
	username, err := tg.Username(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка авторизации в Telegram: %w", err)
	}
	log.Infof("Авторизован как @%s", username)

	// === 3. Репозитории ===
	memberRepo := pgstore.NewMembersRepository(pool)
	economyRepo := pgstore.NewEconomyRepository(pool)
	projectRepo := pgstore.NewProjectRepository(pool)
	treeRepo := pgstore.NewTreeRepository(pool)
	adminRepo := pgstore.NewAdminRepository(pool)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo)
	economyService := economy.NewService(economyRepo)

	// Выключенная фича передаётся как nil-интерфейс, а не как nil-указатель
	var (
		projectService *project.Service
		treeService    *tree.Service
		summaryTasks   summary.Tasks
		summaryEco     summary.Projects
		resetter       admin.ProjectResetter
		jobProjects    jobs.Projects
		jobFruits      jobs.Fruits
	)
	if cfg.FeatureEcoEnabled {
		projectService = project.NewService(projectRepo, loc, cfg.EcoClaimBonus)
		summaryEco, resetter, jobProjects = projectService, projectService, projectService
	}
	if cfg.FeatureTreeEnabled {
		treeService = tree.NewService(treeRepo, loc, tree.Options{
			FruitPoints:     cfg.TreeFruitPoints,
			MilestonePoints: cfg.TreeMilestonePoints,
			MilestoneDays:   cfg.TreeMilestoneDays,
		})
		summaryTasks, jobFruits = treeService, treeService
	}
	summaryService := summary.NewService(summaryEco, summaryTasks, economyService)
	adminService := admin.NewService(adminRepo, memberService, economyService, resetter,
		cfg.AdminIDs, cfg.AdminPasswordHash)

	// === 5. Обработчики ===
	deps := bot.Deps{
		Messenger: tg,
		Members:   memberService,
		Balances:  economyService,
		Filter:    filters.NewChatFilter(cfg.GroupChatID),
		Economy:   economy.NewHandler(economyService, tg, loc),
		Summary:   summary.NewHandler(summaryService, tg),
		Admin:     admin.NewHandler(adminService, tg),
	}
	if projectService != nil {
		deps.Project = project.NewHandler(projectService, tg)
	}
	if treeService != nil {
		deps.Tree = tree.NewHandler(treeService, tg)
	}

	// === 6. Собираем бота ===
	b := bot.New(deps, bot.Options{
		MaxInflight:       cfg.BotMaxInflight,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(loc, jobs.Specs{
		StatusRefresh: cfg.JobsStatusRefreshSpec,
		Reminders:     cfg.JobsReminderSpec,
		Fruits:        cfg.JobsFruitSpec,
	}, jobProjects, jobFruits, tg)

	log.WithFields(log.Fields{
		"eco":      cfg.FeatureEcoEnabled,
		"tree":     cfg.FeatureTreeEnabled,
		"timezone": loc.String(),
	}).Info("Приложение собрано")

	return &App{
		Bot:           b,
		Scheduler:     scheduler,
		DB:            pool,
		Telegram:      tg,
		updateTimeout: cfg.BotUpdateTimeoutSeconds,
	}, nil
}

// Run запускает планировщик и обработку апдейтов. Блокирует до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}
	defer a.Scheduler.Stop()

	updates, err := a.Telegram.Updates(ctx, a.updateTimeout)
	if err != nil {
		return err
	}
	a.Bot.Run(ctx, updates)
	return nil
}

// Close освобождает ресурсы.
func (a *App) Close() {
	a.Bot.Close()
	a.DB.Close()
}
