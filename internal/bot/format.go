package bot

import (
	"fmt"
	"strings"
	"time"

	"bookingpro/internal/availability"
	"bookingpro/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	monthsGenitive = [...]string{
		"января", "февраля", "марта", "апреля", "мая", "июня",
		"июля", "августа", "сентября", "октября", "ноября", "декабря",
	}
	monthsShort = [...]string{
		"янв", "фев", "мар", "апр", "мая", "июн",
		"июл", "авг", "сен", "окт", "ноя", "дек",
	}
	weekdays = [...]string{
		"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота",
	}
)

// "20 октября"
func dayMonth(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), monthsGenitive[t.Month()-1])
}

// "20 окт"
func dayMonthShort(t time.Time) string {
	return fmt.Sprintf("%02d %s", t.Day(), monthsShort[t.Month()-1])
}

// "20 октября (вторник)"
func dayLabel(t time.Time) string {
	return fmt.Sprintf("%s (%s)", dayMonth(t), weekdays[t.Weekday()])
}

// "20 октября 2026 (вторник)"
func longDate(t time.Time) string {
	return fmt.Sprintf("%s %d (%s)", dayMonth(t), t.Year(), weekdays[t.Weekday()])
}

func dateButtonLabel(d availability.Day) string {
	switch d.Offset {
	case 0:
		return "🔥 Сегодня"
	case 1:
		return "📆 Завтра"
	default:
		return dayLabel(d.Date)
	}
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

const (
	helpMessage = `ℹ️ *Как пользоваться ботом:*

1️⃣ *Записаться* — нажми /book
2️⃣ Выбери *дату* из предложенных
3️⃣ Выбери *время* из свободных слотов
4️⃣ Введи свое *имя*
5️⃣ Подтверди запись

После записи ты получишь подтверждение, и тебе придет напоминание за день до тренировки!

📋 *Другие команды:*
/my\_bookings — посмотреть свои записи
/cancel — отменить запись`

	chooseDateMessage   = "📅 *Выберите дату для записи:*"
	noSlotsMessage      = "😔 К сожалению, на эту дату нет свободных слотов.\n\nПопробуйте выбрать другую дату: /book"
	slotsErrorMessage   = "❌ Произошла ошибка при загрузке свободных слотов. Попробуйте позже."
	askNameMessage      = "👤 *Как вас зовут?*\n\nНапишите ваше имя:"
	nameTooShortMessage = "Имя должно содержать минимум 2 символа. Попробуйте еще раз:"
	bookingErrorMessage = "❌ Произошла ошибка при создании записи. Попробуйте позже или свяжитесь с поддержкой."
	declinedMessage     = "❌ Запись отменена.\n\nДля новой записи: /book"
	loadErrorMessage    = "❌ Произошла ошибка при загрузке записей."
	noBookingsMessage   = "📋 У вас пока нет записей.\n\nЗаписаться: /book"
	noUpcomingMessage   = "📋 У вас нет предстоящих записей.\n\nЗаписаться: /book"
	nothingToCancel     = "📋 У вас нет записей для отмены."
	chooseCancelMessage = "❌ *Выберите запись для отмены:*"

	answerCreating  = "Создаем запись..."
	answerNotFound  = "Запись не найдена"
	answerCancelled = "Запись отменена"
	answerError     = "Произошла ошибка"
	answerStale     = "Сценарий устарел, начните заново: /book"
)

func welcomeMessage(firstName string, svc Service) string {
	return fmt.Sprintf(`👋 Привет, %s!

Добро пожаловать в *BookingPro* — твой персональный помощник для записи на тренировки!

📋 *Доступные команды:*

/book — Записаться на тренировку
/my\_bookings — Мои записи
/cancel — Отменить запись
/help — Помощь

💪 *Наша услуга:*
%s
⏱ Длительность: %d минут
💰 Стоимость: %s₽

Нажми /book чтобы записаться!`, escape(firstName), escape(svc.Name), int(svc.Duration.Minutes()), svc.Price)
}

func chooseTimeMessage(day time.Time) string {
	return fmt.Sprintf("⏰ *Выберите время на %s:*\n\n✅ — свободные слоты", longDate(day))
}

func confirmMessage(name string, start time.Time, svc Service) string {
	return fmt.Sprintf(`✅ *Подтверждение записи*

👤 Имя: %s
📅 Дата: %s
⏰ Время: %s
💼 Услуга: %s
⏱ Длительность: %d мин
💰 Стоимость: %s₽

Всё верно?`, escape(name), longDate(start), start.Format("15:04"), escape(svc.Name), int(svc.Duration.Minutes()), svc.Price)
}

func bookedMessage(bk *models.Booking, start time.Time) string {
	return fmt.Sprintf(`🎉 *Запись подтверждена!*

📋 Номер записи: #%s

👤 Имя: %s
📅 Дата: %s
⏰ Время: %s
💼 Услуга: %s
💰 Стоимость: %s₽

📍 Адрес будет отправлен вам за день до тренировки.

Увидимся! 💪

_Для отмены: /cancel_`, escape(bk.ShortID()), escape(bk.ClientName), longDate(start), start.Format("15:04"), escape(bk.Service), bk.Price)
}

func adminBookedMessage(bk *models.Booking, start time.Time) string {
	username := bk.TelegramUsername
	if username == "" {
		username = "не указан"
	}
	return fmt.Sprintf(`🔔 *Новая запись!*

👤 Клиент: %s
📱 Telegram: @%s
🆔 ID: %s

📅 Дата: %s
⏰ Время: %s
💼 Услуга: %s
💰 Сумма: %s₽

📋 ID записи: %s`, escape(bk.ClientName), escape(username), bk.UserID, longDate(start), start.Format("15:04"),
		escape(bk.Service), bk.Price, escape(bk.ID))
}

func cancelledMessage(bk *models.Booking, start time.Time) string {
	return fmt.Sprintf("✅ Запись отменена:\n\n📅 %s ⏰ %s\n💼 %s", dayMonth(start), start.Format("15:04"), bk.Service)
}

func adminCancelledMessage(bk *models.Booking, start time.Time) string {
	return fmt.Sprintf("❌ *Отмена записи*\n\n👤 %s\n📅 %s %s\n💼 %s",
		escape(bk.ClientName), dayMonth(start), start.Format("15:04"), escape(bk.Service))
}

func myBookingsMessage(bookings []models.Booking, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString("📋 *Ваши записи:*\n\n")
	for i := range bookings {
		bk := &bookings[i]
		start := bk.StartsAt(loc)
		fmt.Fprintf(&sb, "%d. 📅 %s ⏰ %s\n", i+1, dayMonthShort(start), start.Format("15:04"))
		fmt.Fprintf(&sb, "   💼 %s\n", escape(bk.Service))
		fmt.Fprintf(&sb, "   📋 ID: #%s\n\n", escape(bk.ShortID()))
	}
	sb.WriteString("_Для отмены: /cancel_")
	return sb.String()
}

func dayBookingsMessage(day time.Time, bookings []models.Booking) string {
	if len(bookings) == 0 {
		return fmt.Sprintf("📋 На %s записей нет.", longDate(day))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 *Записи на %s:*\n\n", longDate(day))
	for i := range bookings {
		bk := &bookings[i]
		fmt.Fprintf(&sb, "⏰ %s — %s", bk.Time, escape(bk.ClientName))
		if bk.TelegramUsername != "" {
			fmt.Fprintf(&sb, " (@%s)", escape(bk.TelegramUsername))
		}
		fmt.Fprintf(&sb, " #%s\n", escape(bk.ShortID()))
	}
	return sb.String()
}

func reminderMessage(bk *models.Booking, start time.Time) string {
	return fmt.Sprintf("⏰ *Напоминание о тренировке*\n\nЗавтра, %s, в %s у вас %s.\n\nДля отмены: /cancel",
		dayMonth(start), start.Format("15:04"), escape(bk.Service))
}
