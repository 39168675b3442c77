package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messenger is the subset of *tgbotapi.BotAPI the bot relies on.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type handlerFunc func(ctx context.Context, msg *tgbotapi.Message, args []string)

type Bot struct {
	api      messenger
	username string
	chatID   int64
	services *services.ServiceManager
	log      *logger.Logger
	handlers map[string]handlerFunc
	chat     handlerFunc

	mu     sync.Mutex
	cursor services.CalendarCursor
}

func NewBot(token string, chatID int64, serviceManager *services.ServiceManager, log *logger.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	bot := newBot(botAPI, botAPI.Self.UserName, chatID, serviceManager, log)
	bot.log.Info("bot initialized", "username", bot.username)
	return bot, nil
}

func newBot(api messenger, username string, chatID int64, serviceManager *services.ServiceManager, log *logger.Logger) *Bot {
	bot := &Bot{
		api:      api,
		username: username,
		chatID:   chatID,
		services: serviceManager,
		log:      log.With("component", "telegram"),
		handlers: make(map[string]handlerFunc),
		cursor:   services.NewCalendarCursor(serviceManager.Now()),
	}
	bot.registerHandlers()
	return bot
}

func (b *Bot) registerHandlers() {
	public := map[string]handlerFunc{
		"/start":    b.handleStart,
		"/help":     b.handleHelp,
		"/login":    b.handleLogin,
		"/register": b.handleRegister,
		"/guest":    b.handleGuest,
		"/quote":    b.handleQuote,
	}
	for cmd, h := range public {
		b.handlers[cmd] = b.requireReady(h)
	}

	authed := map[string]handlerFunc{
		"/logout":     b.handleLogout,
		"/whoami":     b.handleWhoAmI,
		"/mood":       b.handleMood,
		"/detect":     b.handleDetect,
		"/today":      b.handleToday,
		"/calendar":   b.handleCalendar,
		"/prev":       b.handlePrev,
		"/next":       b.handleNext,
		"/day":        b.handleDay,
		"/pick":       b.handlePick,
		"/feedback":   b.handleFeedback,
		"/feedbacks":  b.handleFeedbacks,
		"/star":       b.handleStar,
		"/unfeedback": b.handleDeleteFeedback,
		"/settings":   b.handleSettings,
		"/theme":      b.handleTheme,
		"/lang":       b.handleLanguage,
		"/font":       b.handleFont,
		"/toggle":     b.handleToggle,
		"/applied":    b.handleApplied,
		"/week":       b.handleWeek,
		"/summary":    b.handleSummary,
		"/stats":      b.handleStats,
		"/alerts":     b.handleAlerts,
	}
	for cmd, h := range authed {
		b.handlers[cmd] = b.requireReady(b.requireAuth(h))
	}

	admin := map[string]handlerFunc{
		"/users":   b.handleUsers,
		"/role":    b.handleRole,
		"/status":  b.handleStatus,
		"/deluser": b.handleDeleteUser,
		"/resolve": b.handleResolve,
	}
	for cmd, h := range admin {
		b.handlers[cmd] = b.requireReady(b.requireAuth(b.requireAdmin(h)))
	}

	b.chat = b.requireReady(b.requireAuth(b.handleChat))
}

func (b *Bot) requireReady(next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message, args []string) {
		if !b.services.Ready() {
			b.SendMessageOrLogError(msgLoading)
			return
		}
		next(ctx, msg, args)
	}
}

func (b *Bot) requireAuth(next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message, args []string) {
		if !b.services.Session.IsAuthenticated() {
			b.SendMessageOrLogError(msgLoginRequired)
			return
		}
		next(ctx, msg, args)
	}
}

func (b *Bot) requireAdmin(next handlerFunc) handlerFunc {
	return func(ctx context.Context, msg *tgbotapi.Message, args []string) {
		if !b.services.Session.IsAdmin() {
			b.SendMessageOrLogError(msgAdminOnly)
			return
		}
		next(ctx, msg, args)
	}
}

// SendMessage posts an HTML message to the configured chat.
func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithKeyboard(text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", "error", err)
	}
}

func (b *Bot) GetUsername() string {
	return b.username
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
		b.log.Warn("message from unknown chat ignored")
		return
	}

	b.handleMessage(ctx, update.Message)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if !strings.HasPrefix(text, "/") {
		b.chat(ctx, msg, []string{text})
		return
	}

	parts := strings.Fields(text)
	command, _, _ := strings.Cut(parts[0], "@")
	handler, exists := b.handlers[strings.ToLower(command)]
	if !exists {
		b.SendMessageOrLogError(msgUnknownCommand)
		return
	}
	handler(ctx, msg, parts[1:])
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "✅")); err != nil {
			b.log.Warn("callback answer failed", "error", err)
		}
	}()

	if callback.Message == nil || callback.Message.Chat == nil || callback.Message.Chat.ID != b.chatID {
		return
	}

	kind, value, _ := strings.Cut(callback.Data, ":")
	b.log.Debug("callback received", "kind", kind, "value", value)

	var handler handlerFunc
	switch kind {
	case "mood":
		handler = b.handleMood
	case "pick":
		handler = b.handlePick
	case "detect":
		handler = b.handleDetect
	case "cal":
		if value == "prev" {
			handler = b.handlePrev
		} else {
			handler = b.handleNext
		}
	case "star":
		handler = b.handleStar
	default:
		return
	}
	b.requireReady(b.requireAuth(handler))(ctx, callback.Message, []string{value})
}

func (b *Bot) moodKeyboard(action string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(database.Moods))
	for _, m := range database.Moods {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(database.MoodEmojis[m], action+":"+string(m)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func (b *Bot) calendarKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Prev", "cal:prev"),
			tgbotapi.NewInlineKeyboardButtonData("Next ▶️", "cal:next"),
		),
	)
}

func (b *Bot) detectKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 Face", "detect:face"),
			tgbotapi.NewInlineKeyboardButtonData("🎙 Voice", "detect:voice"),
		),
	)
}
