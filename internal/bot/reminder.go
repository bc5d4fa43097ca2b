package bot

import (
	"context"
	"strconv"
	"time"

	"bookingpro/internal/metrics"
	"bookingpro/internal/models"
)

// StartReminders schedules daily reminders for next-day bookings at hour
// in the bot's timezone.
func (b *Bot) StartReminders(ctx context.Context, hour int) {
	go func() {
		timer := time.NewTimer(timeUntilNextHour(b.today(), hour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				sent := b.sendTomorrowReminders(ctx)
				b.logger.Info().Int("sent", sent).Msg("Daily reminders done")
				timer.Reset(timeUntilNextHour(b.today(), hour))
			}
		}
	}()
}

// sendTomorrowReminders messages every client with a confirmed booking
// tomorrow and returns how many reminders went out.
func (b *Bot) sendTomorrowReminders(ctx context.Context) int {
	tomorrow := b.today().AddDate(0, 0, 1).Format("2006-01-02")
	bookings, err := b.store.List(ctx, models.Filter{Date: tomorrow, Status: models.StatusConfirmed})
	if err != nil {
		metrics.IncGatewayError("store_list")
		b.logger.Error().Err(err).Str("date", tomorrow).Msg("reminder: list bookings")
		return 0
	}

	sent := 0
	for i := range bookings {
		bk := &bookings[i]
		chatID, err := strconv.ParseInt(bk.UserID, 10, 64)
		if err != nil || chatID == 0 {
			b.logger.Warn().Str("booking_id", bk.ID).Str("user_id", bk.UserID).Msg("reminder: bad user id")
			continue
		}

		msg := newMarkdownMessage(chatID, reminderMessage(bk, bk.StartsAt(b.opts.Location)))
		if _, err := b.tg.Send(msg); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("reminder: send")
			continue
		}
		sent++
	}
	return sent
}

func timeUntilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
