// Package bot принимает апдейты Telegram и маршрутизирует команды по фичам.
// bot.go держит цикл обработки с ограничением параллелизма, фильтр чатов,
// rate limiting и таблицу русских команд.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/bot/filters"
	"serotonyl.ru/eco-bot/internal/bot/middleware"
	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/admin"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/members"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/summary"
	"serotonyl.ru/eco-bot/internal/features/tree"
)

// Deps - зависимости бота. Обработчик фичи равен nil, если фича выключена.
type Deps struct {
	Messenger common.Messenger
	Members   *members.Service
	Balances  *economy.Service
	Filter    *filters.ChatFilter

	Project *project.Handler
	Economy *economy.Handler
	Tree    *tree.Handler
	Summary *summary.Handler
	Admin   *admin.Handler
}

// Options - параметры цикла обработки.
type Options struct {
	MaxInflight       int
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Bot - маршрутизатор апдейтов.
type Bot struct {
	Deps

	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	wg       sync.WaitGroup
}

// New создаёт бота.
func New(deps Deps, opts Options) *Bot {
	maxInFlight := opts.MaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}
	return &Bot{
		Deps:        deps,
		rateLimiter: middleware.NewRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow),
		parser:      NewCommandParser(),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Run обрабатывает апдейты, пока не отменён ctx или не закрыт канал.
// Перед возвратом дожидается обработчиков, которые уже выполняются.
func (b *Bot) Run(ctx context.Context, updates <-chan telego.Update) {
	log.WithField("max_inflight", cap(b.inflight)).Info("Бот запущен и ожидает сообщения...")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			select {
			case b.inflight <- struct{}{}:
			case <-ctx.Done():
				return
			}
			b.wg.Add(1)
			go func(upd telego.Update) {
				defer b.wg.Done()
				defer func() { <-b.inflight }()
				b.HandleUpdate(ctx, upd)
			}(update)
		}
	}
}

// Close освобождает фоновые ресурсы бота.
func (b *Bot) Close() {
	b.rateLimiter.Close()
}

// HandleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) HandleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	message := update.Message
	if message == nil {
		return
	}

	if len(message.NewChatMembers) > 0 {
		if b.Filter.IsGroup(message) {
			b.handleNewMembers(ctx, message.NewChatMembers)
		}
		return
	}

	middleware.LogMessage(message)

	if !b.Filter.CheckAccess(message) {
		return
	}

	userID := message.From.ID
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	if err := b.Members.Touch(ctx, userID,
		message.From.Username, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Touch failed")
	}

	chatID := message.Chat.ID
	private := message.Chat.Type == telego.ChatTypePrivate

	if len(message.Photo) > 0 {
		b.handlePhoto(ctx, chatID, userID, message)
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	// Команды оператора принимаются только в личке: пароль не должен светиться в группе
	if private && b.Admin != nil && b.Admin.HandleCommand(ctx, chatID, userID, cmd, args) {
		return
	}

	b.routeCommand(ctx, chatID, userID, cmd, args)
}

// handlePhoto сохраняет фото месяца, если в подписи команда «фото».
// Берётся самый крупный размер: Telegram присылает их по возрастанию.
func (b *Bot) handlePhoto(ctx context.Context, chatID, userID int64, message *telego.Message) {
	cmd, args, ok := b.parser.ParseCommand(message.Caption)
	if !ok {
		cmd, args, ok = b.parser.ParseCommand("!" + message.Caption)
	}
	if !ok || cmd != "фото" {
		return
	}
	if b.Project == nil {
		b.send(ctx, chatID, disabledEco)
		return
	}
	largest := message.Photo[len(message.Photo)-1]
	b.Project.HandlePhoto(ctx, chatID, userID, args, largest.FileID)
}

const (
	disabledEco  = "🌿 Эко-энзим временно отключён"
	disabledTree = "🌳 Дерево задач временно отключено"
)

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) {
	switch cmd {
	case "start", "help", "помощь":
		b.send(ctx, chatID, b.helpText())

	// --- Эко-энзим ---
	case "эко", "статус":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleStatus(ctx, chatID, userID) })
	case "сдать":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleAddWaste(ctx, chatID, userID, args) })
	case "журнал":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleJournal(ctx, chatID, userID) })
	case "старт":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleStart(ctx, chatID, userID) })
	case "чекин":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleCheckin(ctx, chatID, userID, args) })
	case "фото":
		b.eco(ctx, chatID, func(*project.Handler) {
			b.send(ctx, chatID, "📸 Отправьте фото с подписью «фото» или «фото 2» для второго месяца")
		})
	case "таймлайн":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleTimeline(ctx, chatID, userID) })
	case "неделя":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleWeek(ctx, chatID, userID, args) })
	case "забрать":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleClaim(ctx, chatID, userID) })
	case "сброс":
		b.eco(ctx, chatID, func(h *project.Handler) { h.HandleReset(ctx, chatID, userID, args) })

	// --- Баллы ---
	case "баллы":
		b.Economy.HandleBalance(ctx, chatID, userID)
	case "история":
		b.Economy.HandleTransactions(ctx, chatID, userID)
	case "ваучеры":
		b.Economy.HandleVouchers(ctx, chatID, userID)
	case "обменять":
		b.Economy.HandleRedeem(ctx, chatID, userID, args)

	// --- Дерево ---
	case "задачи":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleTasks(ctx, chatID, userID) })
	case "готово":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleDone(ctx, chatID, userID, args) })
	case "дерево":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleTree(ctx, chatID, userID) })
	case "урожай":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleHarvest(ctx, chatID, userID, args) })
	case "прогресс":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleProgress(ctx, chatID, userID) })
	case "награда":
		b.tree(ctx, chatID, func(h *tree.Handler) { h.HandleMilestone(ctx, chatID, userID) })

	case "сводка":
		b.Summary.HandleSummary(ctx, chatID, userID)

	default:
		log.WithField("cmd", cmd).Debug("unknown command")
	}
}

func (b *Bot) eco(ctx context.Context, chatID int64, fn func(*project.Handler)) {
	if b.Project == nil {
		b.send(ctx, chatID, disabledEco)
		return
	}
	fn(b.Project)
}

func (b *Bot) tree(ctx context.Context, chatID int64, fn func(*tree.Handler)) {
	if b.Tree == nil {
		b.send(ctx, chatID, disabledTree)
		return
	}
	fn(b.Tree)
}

func (b *Bot) helpText() string {
	text := "🌱 Эко-бот помогает копить полезные привычки.\n\n"
	if b.Project != nil {
		text += "Эко-энзим:\n" +
			"!сдать <кг> — записать органические отходы\n" +
			"!журнал — журнал отходов\n" +
			"!старт — начать ферментацию (90 дней)\n" +
			"!эко — статус проекта\n" +
			"!чекин [день] — отметить день\n" +
			"фото с подписью «фото [месяц]» — фото месяца\n" +
			"!таймлайн, !неделя <n> — прогресс таймлайна\n" +
			"!забрать — итоговый бонус\n" +
			"!сброс да — удалить проект\n\n"
	}
	if b.Tree != nil {
		text += "Дерево задач:\n" +
			"!задачи, !готово <n> — задачи дня\n" +
			"!дерево, !урожай <n> — листья и плоды\n" +
			"!прогресс — неделя, !награда — серия\n\n"
	}
	text += "Баллы: !баллы, !история, !ваучеры, !обменять <код>\n" +
		"!сводка — всё сразу"
	return text
}

// handleNewMembers регистрирует участников, добавленных в группу.
func (b *Bot) handleNewMembers(ctx context.Context, users []telego.User) {
	list := make([]*members.Member, 0, len(users))
	for _, u := range users {
		if u.IsBot {
			continue
		}
		list = append(list, &members.Member{
			UserID:    u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	b.Members.Joined(ctx, list)

	if b.Balances == nil {
		return
	}
	for _, m := range list {
		if err := b.Balances.CreateBalance(ctx, m.UserID); err != nil {
			log.WithError(err).WithField("user_id", m.UserID).Warn("CreateBalance failed")
		}
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.Messenger.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
