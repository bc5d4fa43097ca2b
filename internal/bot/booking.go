package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookingpro/internal/availability"
	"bookingpro/internal/calendar"
	"bookingpro/internal/events"
	"bookingpro/internal/metrics"
	"bookingpro/internal/models"
	"bookingpro/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) startBooking(ctx context.Context, msg *tgbotapi.Message) {
	sess := b.sessions.Start(msg.Chat.ID)
	if msg.From != nil {
		sess.SetUsername(msg.From.UserName)
	}
	b.sendDateSelection(ctx, msg.Chat.ID)
}

func (b *Bot) sendDateSelection(ctx context.Context, chatID int64) {
	days := availability.UpcomingDays(b.today(), b.opts.BookableDays)
	b.sendWithKeyboard(ctx, chatID, chooseDateMessage, dateKeyboard(days))
}

func (b *Bot) handleWizardCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	sess := b.sessions.Get(chatID)
	if sess == nil {
		b.answerCallback(ctx, cq.ID, answerStale)
		return
	}
	if cq.From != nil && cq.From.UserName != "" {
		sess.SetUsername(cq.From.UserName)
	}

	data := cq.Data
	switch {
	case strings.HasPrefix(data, "date_"):
		b.handleDateChosen(ctx, cq, sess, strings.TrimPrefix(data, "date_"))
	case strings.HasPrefix(data, "time_"):
		b.handleTimeChosen(ctx, cq, sess, strings.TrimPrefix(data, "time_"))
	case data == "back_to_date":
		b.handleBackToDate(ctx, cq, sess)
	case data == "confirm_yes":
		b.handleConfirm(ctx, cq, sess)
	case data == "confirm_no":
		b.handleDecline(ctx, cq, sess)
	}
}

// fire applies ev and answers the callback as stale when it is not allowed.
func (b *Bot) fire(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session, ev session.Event, payload string) bool {
	if err := b.fsm.Fire(sess, ev, payload); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("event", string(ev)).Str("step", string(sess.Step())).Msg("Rejected wizard event")
		b.answerCallback(ctx, cq.ID, answerStale)
		return false
	}
	return true
}

func (b *Bot) handleDateChosen(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session, value string) {
	day, err := availability.ParseDate(value, b.opts.Location)
	if err != nil {
		b.answerCallback(ctx, cq.ID, answerStale)
		return
	}
	if !b.fire(ctx, cq, sess, session.EventDateChosen, value) {
		return
	}

	chatID := cq.Message.Chat.ID
	b.answerCallback(ctx, cq.ID, "")
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)
	b.sendTimeSelection(ctx, chatID, sess, day)
}

func (b *Bot) sendTimeSelection(ctx context.Context, chatID int64, sess *session.Session, day time.Time) {
	slots, err := b.availableSlots(ctx, day)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("date", day.Format("2006-01-02")).Msg("Failed to load slots")
		metrics.IncSlotQuery(metrics.SlotsError)
		b.reply(ctx, chatID, slotsErrorMessage)
		b.abort(sess)
		return
	}
	if len(slots) == 0 {
		metrics.IncSlotQuery(metrics.SlotsEmpty)
		b.reply(ctx, chatID, noSlotsMessage)
		b.abort(sess)
		return
	}

	metrics.IncSlotQuery(metrics.SlotsFound)
	b.sendWithKeyboard(ctx, chatID, chooseTimeMessage(day), timeKeyboard(slots))
}

// availableSlots queries the calendar over the whole candidate grid, which may
// run past the end of the work day.
func (b *Bot) availableSlots(ctx context.Context, day time.Time) ([]availability.Slot, error) {
	candidates, err := availability.Candidates(day, b.opts.Schedule)
	if err != nil {
		return nil, err
	}
	bounds := availability.DayBounds(day, b.opts.Schedule)
	if n := len(candidates); n > 0 && candidates[n-1].End.After(bounds.End) {
		bounds.End = candidates[n-1].End
	}

	busy, err := b.calendar.ListBusyIntervals(ctx, bounds.Start, bounds.End)
	if err != nil {
		metrics.IncGatewayError("calendar_list")
		return nil, fmt.Errorf("list busy intervals: %w", err)
	}
	return availability.Compute(day, b.opts.Schedule, busy, b.now())
}

func (b *Bot) abort(sess *session.Session) {
	_ = b.fsm.Fire(sess, session.EventAborted, "")
	b.sessions.Delete(sess.ChatID)
}

func (b *Bot) handleTimeChosen(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session, value string) {
	if _, err := time.Parse("15:04", value); err != nil {
		b.answerCallback(ctx, cq.ID, answerStale)
		return
	}
	if !b.fire(ctx, cq, sess, session.EventTimeChosen, value) {
		return
	}

	chatID := cq.Message.Chat.ID
	b.answerCallback(ctx, cq.ID, "")
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)
	b.sendMarkdown(ctx, chatID, askNameMessage)
}

func (b *Bot) handleBackToDate(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session) {
	if !b.fire(ctx, cq, sess, session.EventBack, "") {
		return
	}

	chatID := cq.Message.Chat.ID
	b.answerCallback(ctx, cq.ID, "")
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)
	b.sendDateSelection(ctx, chatID)
}

func (b *Bot) handleName(ctx context.Context, chatID int64, sess *session.Session, text string) {
	name := strings.TrimSpace(text)
	if err := b.fsm.Fire(sess, session.EventNameEntered, name); err != nil {
		if errors.Is(err, session.ErrNameTooShort) {
			b.reply(ctx, chatID, nameTooShortMessage)
		}
		return
	}

	snap := sess.Snapshot()
	start, err := b.slotStart(snap)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Session holds an invalid slot")
		b.reply(ctx, chatID, bookingErrorMessage)
		b.sessions.Delete(chatID)
		return
	}
	b.sendWithKeyboard(ctx, chatID, confirmMessage(snap.Name, start, b.opts.Service), confirmKeyboard())
}

func (b *Bot) slotStart(snap session.Snapshot) (time.Time, error) {
	day, err := availability.ParseDate(snap.Date, b.opts.Location)
	if err != nil {
		return time.Time{}, err
	}
	return availability.At(day, snap.Time)
}

func (b *Bot) handleConfirm(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session) {
	if !b.fire(ctx, cq, sess, session.EventConfirmed, "") {
		return
	}

	chatID := cq.Message.Chat.ID
	b.answerCallback(ctx, cq.ID, answerCreating)
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)

	defer b.sessions.Delete(chatID)
	if err := b.createBooking(ctx, chatID, sess.Snapshot()); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("Failed to create booking")
		b.reply(ctx, chatID, bookingErrorMessage)
	}
}

func (b *Bot) createBooking(ctx context.Context, chatID int64, snap session.Snapshot) error {
	start, err := b.slotStart(snap)
	if err != nil {
		return err
	}
	svc := b.opts.Service

	eventID, err := b.calendar.CreateEvent(ctx, calendar.EventRequest{
		Summary:     fmt.Sprintf("%s - %s", svc.Name, snap.Name),
		Description: fmt.Sprintf("Клиент: %s\nTelegram ID: %d\nЦена: %s₽", snap.Name, chatID, svc.Price),
		Start:       start,
		Duration:    svc.Duration,
	})
	if err != nil {
		metrics.IncGatewayError("calendar_create")
		return fmt.Errorf("create calendar event: %w", err)
	}

	bk := &models.Booking{
		UserID:           strconv.FormatInt(chatID, 10),
		ClientName:       snap.Name,
		TelegramUsername: snap.Username,
		Date:             snap.Date,
		Time:             snap.Time,
		Service:          svc.Name,
		Price:            svc.Price,
		Duration:         int(svc.Duration.Minutes()),
		Status:           models.StatusConfirmed,
		CalendarEventID:  eventID,
	}
	if _, err := b.store.Create(ctx, bk); err != nil {
		metrics.IncGatewayError("store_create")
		// release the slot so it is not blocked by an orphaned event
		if delErr := b.calendar.DeleteEvent(ctx, eventID); delErr != nil && !errors.Is(delErr, calendar.ErrEventNotFound) {
			zerolog.Ctx(ctx).Error().Err(delErr).Str("event_id", eventID).Msg("Failed to roll back calendar event")
		}
		return fmt.Errorf("save booking: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("booking_id", bk.ID).Str("date", bk.Date).Str("time", bk.Time).Msg("Booking created")
	b.sendMarkdown(ctx, chatID, bookedMessage(bk, start))
	b.notifyAdmin(ctx, adminBookedMessage(bk, start))
	b.publish(ctx, events.BookingCreated, bk)
	return nil
}

func (b *Bot) handleDecline(ctx context.Context, cq *tgbotapi.CallbackQuery, sess *session.Session) {
	if !b.fire(ctx, cq, sess, session.EventDeclined, "") {
		return
	}

	chatID := cq.Message.Chat.ID
	b.answerCallback(ctx, cq.ID, "")
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)
	b.reply(ctx, chatID, declinedMessage)
	b.sessions.Delete(chatID)
}
