package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookingpro/internal/availability"
	"bookingpro/internal/calendar"
	"bookingpro/internal/events"
	"bookingpro/internal/models"
	"bookingpro/internal/session"
	"bookingpro/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the single bookable offering.
type Service struct {
	Name     string
	Price    string
	Duration time.Duration
}

// Options is the static bot configuration.
type Options struct {
	AdminID      int64
	Service      Service
	Schedule     availability.Schedule
	Location     *time.Location
	BookableDays int
	// RateLimit caps outgoing Telegram calls per second; zero disables it.
	RateLimit float64
}

// Bot drives the booking wizard over Telegram.
type Bot struct {
	tg       telegramClient
	calendar calendar.Gateway
	store    store.BookingStore
	sessions *session.Store
	fsm      *session.FSM
	bus      *events.EventBus
	opts     Options
	logger   *zerolog.Logger
	now      func() time.Time
}

func New(
	token string,
	cal calendar.Gateway,
	st store.BookingStore,
	bus *events.EventBus,
	opts Options,
	logger *zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	var tg telegramClient = &realTelegramClient{api: api}
	if opts.RateLimit > 0 {
		tg = newRateLimitedClient(tg, opts.RateLimit)
	}
	return newBot(tg, cal, st, bus, opts, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(
	tg telegramClient,
	cal calendar.Gateway,
	st store.BookingStore,
	bus *events.EventBus,
	opts Options,
	logger *zerolog.Logger,
) (*Bot, error) {
	return newBot(tg, cal, st, bus, opts, logger)
}

func newBot(
	tg telegramClient,
	cal calendar.Gateway,
	st store.BookingStore,
	bus *events.EventBus,
	opts Options,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if cal == nil || st == nil {
		return nil, fmt.Errorf("calendar gateway and booking store are required")
	}
	if err := opts.Schedule.Validate(); err != nil {
		return nil, err
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BookableDays <= 0 {
		opts.BookableDays = 7
	}
	if bus == nil {
		bus = events.NewEventBus()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Bot{
		tg:       tg,
		calendar: cal,
		store:    st,
		sessions: session.NewStore(),
		fsm:      session.NewFSM(),
		bus:      bus,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start begins polling updates and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("Bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("Handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("chat_id", update.Message.Chat.ID).
			Str("text", update.Message.Text).
			Msg("Handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// free text only matters while a name is expected
	sess := b.sessions.Get(msg.Chat.ID)
	if sess == nil || sess.Step() != session.StateEnterName {
		return
	}
	b.handleName(ctx, msg.Chat.ID, sess, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		firstName := "друг"
		if msg.From != nil && msg.From.FirstName != "" {
			firstName = msg.From.FirstName
		}
		b.sendMarkdown(ctx, chatID, welcomeMessage(firstName, b.opts.Service))
	case "help":
		b.sendMarkdown(ctx, chatID, helpMessage)
	case "book":
		b.startBooking(ctx, msg)
	case "my_bookings":
		b.handleMyBookings(ctx, chatID)
	case "cancel":
		b.handleCancelCommand(ctx, chatID)
	case "bookings":
		if b.isAdmin(msg) {
			b.handleDayBookings(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
		}
	case "export":
		if b.isAdmin(msg) {
			b.handleExport(ctx, chatID)
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil {
		return
	}
	if cq.Message == nil || cq.Message.Chat == nil {
		b.answerCallback(ctx, cq.ID, "")
		return
	}
	data := cq.Data

	switch {
	case strings.HasPrefix(data, "cancel_"):
		b.handleCancelCallback(ctx, cq, strings.TrimPrefix(data, "cancel_"))
	case strings.HasPrefix(data, "date_"),
		strings.HasPrefix(data, "time_"),
		data == "back_to_date",
		data == "confirm_yes",
		data == "confirm_no":
		b.handleWizardCallback(ctx, cq)
	default:
		b.answerCallback(ctx, cq.ID, "")
	}
}

func (b *Bot) isAdmin(msg *tgbotapi.Message) bool {
	return b.opts.AdminID != 0 && msg.From != nil && msg.From.ID == b.opts.AdminID
}

func (b *Bot) today() time.Time {
	return b.now().In(b.opts.Location)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) {
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Failed to send message")
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func newMarkdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (b *Bot) sendMarkdown(ctx context.Context, chatID int64, text string) {
	b.send(ctx, newMarkdownMessage(chatID, text))
}

func (b *Bot) sendWithKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := newMarkdownMessage(chatID, text)
	msg.ReplyMarkup = kb
	b.send(ctx, msg)
}

func (b *Bot) notifyAdmin(ctx context.Context, text string) {
	if b.opts.AdminID == 0 {
		return
	}
	b.sendMarkdown(ctx, b.opts.AdminID, text)
}

func (b *Bot) answerCallback(ctx context.Context, id, text string) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(id, text)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to answer callback")
	}
}

func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) {
	if _, err := b.tg.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("message_id", messageID).Msg("Failed to delete message")
	}
}

func (b *Bot) publish(ctx context.Context, eventType string, bk *models.Booking) {
	ev, err := events.NewBookingEvent(eventType, bk)
	if err == nil {
		err = b.bus.Publish(ev)
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", eventType).Str("booking_id", bk.ID).Msg("Failed to publish booking event")
	}
}
