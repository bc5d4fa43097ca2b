package bot

import (
	"context"
	"errors"
	"strconv"

	"bookingpro/internal/calendar"
	"bookingpro/internal/events"
	"bookingpro/internal/metrics"
	"bookingpro/internal/models"
	"bookingpro/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) upcoming(bookings []models.Booking) []models.Booking {
	now := b.today()
	out := make([]models.Booking, 0, len(bookings))
	for i := range bookings {
		if bookings[i].IsUpcoming(now) {
			out = append(out, bookings[i])
		}
	}
	return out
}

func (b *Bot) handleMyBookings(ctx context.Context, chatID int64) {
	bookings, err := b.store.ListByUser(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		metrics.IncGatewayError("store_list")
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list user bookings")
		b.reply(ctx, chatID, loadErrorMessage)
		return
	}
	if len(bookings) == 0 {
		b.reply(ctx, chatID, noBookingsMessage)
		return
	}

	upcoming := b.upcoming(bookings)
	if len(upcoming) == 0 {
		b.reply(ctx, chatID, noUpcomingMessage)
		return
	}
	b.sendMarkdown(ctx, chatID, myBookingsMessage(upcoming, b.opts.Location))
}

func (b *Bot) handleCancelCommand(ctx context.Context, chatID int64) {
	bookings, err := b.store.ListByUser(ctx, strconv.FormatInt(chatID, 10))
	if err != nil {
		metrics.IncGatewayError("store_list")
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list user bookings")
		b.reply(ctx, chatID, loadErrorMessage)
		return
	}

	upcoming := b.upcoming(bookings)
	if len(upcoming) == 0 {
		b.reply(ctx, chatID, nothingToCancel)
		return
	}
	b.sendWithKeyboard(ctx, chatID, chooseCancelMessage, cancelKeyboard(upcoming, b.opts.Location))
}

// handleCancelCallback cancels in the store first; the calendar event is
// removed afterwards on a best-effort basis.
func (b *Bot) handleCancelCallback(ctx context.Context, cq *tgbotapi.CallbackQuery, bookingID string) {
	l := zerolog.Ctx(ctx)
	chatID := cq.Message.Chat.ID

	bk, err := b.store.Get(ctx, bookingID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		b.answerCallback(ctx, cq.ID, answerNotFound)
		return
	case err != nil:
		metrics.IncGatewayError("store_get")
		l.Error().Err(err).Str("booking_id", bookingID).Msg("Failed to load booking")
		b.answerCallback(ctx, cq.ID, answerError)
		return
	}
	if bk.UserID != strconv.FormatInt(chatID, 10) || bk.Status != models.StatusConfirmed {
		b.answerCallback(ctx, cq.ID, answerNotFound)
		return
	}

	if err := b.store.Cancel(ctx, bk.ID); err != nil {
		metrics.IncGatewayError("store_cancel")
		l.Error().Err(err).Str("booking_id", bk.ID).Msg("Failed to cancel booking")
		b.answerCallback(ctx, cq.ID, answerError)
		return
	}
	bk.Status = models.StatusCancelled

	if bk.CalendarEventID != "" {
		err := b.calendar.DeleteEvent(ctx, bk.CalendarEventID)
		if err != nil && !errors.Is(err, calendar.ErrEventNotFound) {
			metrics.IncGatewayError("calendar_delete")
			l.Warn().Err(err).Str("event_id", bk.CalendarEventID).Msg("Calendar event left behind after cancellation")
		}
	}

	l.Info().Str("booking_id", bk.ID).Msg("Booking cancelled")
	start := bk.StartsAt(b.opts.Location)
	b.answerCallback(ctx, cq.ID, answerCancelled)
	b.deleteMessage(ctx, chatID, cq.Message.MessageID)
	b.reply(ctx, chatID, cancelledMessage(bk, start))
	b.notifyAdmin(ctx, adminCancelledMessage(bk, start))
	b.publish(ctx, events.BookingCancelled, bk)
}
