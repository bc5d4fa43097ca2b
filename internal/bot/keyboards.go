package bot

import (
	"fmt"
	"time"

	"bookingpro/internal/availability"
	"bookingpro/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func dateKeyboard(days []availability.Day) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(days))
	for _, d := range days {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(dateButtonLabel(d), "date_"+d.Value),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timeKeyboard(slots []availability.Slot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(slots)+1)
	for _, s := range slots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Label, "time_"+s.Value),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_date"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, подтвердить", "confirm_yes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "confirm_no"),
		),
	)
}

func cancelKeyboard(bookings []models.Booking, loc *time.Location) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(bookings))
	for i := range bookings {
		bk := &bookings[i]
		start := bk.StartsAt(loc)
		label := fmt.Sprintf("%s %s - %s", dayMonthShort(start), start.Format("15:04"), bk.Service)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "cancel_"+bk.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
