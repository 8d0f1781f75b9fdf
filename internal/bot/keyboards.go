package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/datatypes"

	"github.com/aquastaff/pool-reservation/internal/model"
)

// DatesKeyboard строит список открытых дат со свободными местами.
func DatesKeyboard(slots []model.DailySlot) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(slots))
	for _, slot := range slots {
		label := fmt.Sprintf("%s (мест: %d)", HumanDate(slot.Date), slot.AvailableSlots)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CbSelectDate+slot.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ConfirmKeyboard — подтверждение выбранной даты.
func ConfirmKeyboard(slotID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить бронирование", CbConfirmSlot+slotID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Отменить", CbAbort),
		),
	)
}

// BookingsKeyboard — кнопки отмены для активных бронирований клиента.
func BookingsKeyboard(bookings []model.Booking) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range bookings {
		if b.Status.IsTerminal() {
			continue
		}
		label := "Отменить"
		if b.Slot != nil {
			label = fmt.Sprintf("Отменить %s", HumanDate(b.Slot.Date))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CbCancelBooking+b.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// RegistrationConfirmKeyboard — клавиатура Да/Нет для подтверждения анкеты.
func RegistrationConfirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Да"),
			tgbotapi.NewKeyboardButton("Нет"),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

// HumanDate форматирует дату слота для сообщений.
func HumanDate(d datatypes.Date) string {
	return time.Time(d).Format("02.01.2006")
}

func statusLabel(s model.BookingStatus) string {
	switch s {
	case model.BookingStatusReserved:
		return "забронировано"
	case model.BookingStatusConfirmed:
		return "подтверждено"
	case model.BookingStatusVisited:
		return "посещено"
	case model.BookingStatusCancelled:
		return "отменено"
	default:
		return string(s)
	}
}
