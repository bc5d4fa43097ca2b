package bot

import (
	"bytes"
	"context"
	"sort"

	"bookingpro/internal/availability"
	"bookingpro/internal/export"
	"bookingpro/internal/metrics"
	"bookingpro/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// handleDayBookings lists confirmed bookings of a date, today by default.
func (b *Bot) handleDayBookings(ctx context.Context, chatID int64, arg string) {
	day := b.today()
	if arg != "" {
		parsed, err := availability.ParseDate(arg, b.opts.Location)
		if err != nil {
			b.reply(ctx, chatID, "Формат: /bookings ГГГГ-ММ-ДД")
			return
		}
		day = parsed
	}

	bookings, err := b.store.List(ctx, models.Filter{
		Date:   day.Format("2006-01-02"),
		Status: models.StatusConfirmed,
	})
	if err != nil {
		metrics.IncGatewayError("store_list")
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list day bookings")
		b.reply(ctx, chatID, loadErrorMessage)
		return
	}
	sort.SliceStable(bookings, func(i, j int) bool { return bookings[i].Time < bookings[j].Time })
	b.sendMarkdown(ctx, chatID, dayBookingsMessage(day, bookings))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	l := zerolog.Ctx(ctx)
	bookings, err := b.store.List(ctx, models.Filter{})
	if err != nil {
		metrics.IncGatewayError("store_list")
		l.Error().Err(err).Msg("Failed to list bookings for export")
		b.reply(ctx, chatID, loadErrorMessage)
		return
	}

	var buf bytes.Buffer
	if err := export.Bookings(&buf, bookings, b.opts.Location); err != nil {
		l.Error().Err(err).Msg("Failed to render export")
		b.reply(ctx, chatID, answerError)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  export.Filename(b.today()),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "📊 Выгрузка записей"
	if _, err := b.tg.Send(doc); err != nil {
		l.Error().Err(err).Msg("Failed to send export")
	}
}
