package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/aquastaff/pool-reservation/internal/config"
	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/service"
)

// Bot — Telegram-интерфейс клиента: регистрация, расписание, бронирование,
// баланс и отмена собственных бронирований. Работает через те же
// бизнес-сервисы, что и админка.
type Bot struct {
	api      *tgbotapi.BotAPI
	store    *Store
	identity *service.IdentityService
	bookings *service.BookingService
	slots    *service.SlotService
	cfg      *config.BotConfig
	logger   zerolog.Logger
}

func New(
	api *tgbotapi.BotAPI,
	identity *service.IdentityService,
	bookings *service.BookingService,
	slots *service.SlotService,
	cfg *config.BotConfig,
	logger zerolog.Logger,
) *Bot {
	return &Bot{
		api:      api,
		store:    NewStore(),
		identity: identity,
		bookings: bookings,
		slots:    slots,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run запускает лонг-поллинг и обрабатывает обновления до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.logger.Info().Msg("shutting down bot")
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if m := update.Message; m != nil {
			b.handleMessage(ctx, m)
			continue
		}
		if cq := update.CallbackQuery; cq != nil {
			b.handleCallback(ctx, cq)
		}
	}
	b.logger.Info().Msg("bot stopped")
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	sess := b.store.Get(m.From.ID)

	if m.IsCommand() {
		sess.Reset()
		switch m.Command() {
		case "start":
			b.cmdStart(ctx, m, sess)
		case "schedule":
			b.cmdSchedule(ctx, m)
		case "balance":
			b.cmdBalance(ctx, m)
		case "mybookings":
			b.cmdMyBookings(ctx, m)
		case "cancel":
			b.reply(m.Chat.ID, "Действие отменено.")
		default:
			b.reply(m.Chat.ID, "Неизвестная команда. Доступны /start, /schedule, /balance, /mybookings.")
		}
		return
	}

	// Произвольный текст осмыслен только внутри диалога регистрации.
	switch sess.State {
	case StateAskName:
		sess.Registration.Name = strings.TrimSpace(m.Text)
		sess.Go(StateAskPhone)
		b.reply(m.Chat.ID, "Спасибо! Теперь введите ваш номер телефона:")
	case StateAskPhone:
		sess.Registration.Phone = strings.TrimSpace(m.Text)
		sess.Go(StateConfirmRegistration)
		msg := tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf(
			"Подтвердите данные:\nИмя: %s\nТелефон: %s",
			sess.Registration.Name, sess.Registration.Phone,
		))
		msg.ReplyMarkup = RegistrationConfirmKeyboard()
		b.send(msg)
	case StateConfirmRegistration:
		b.finishRegistration(ctx, m, sess)
	default:
		b.reply(m.Chat.ID, "Используйте команды: /schedule — расписание, /balance — баланс, /mybookings — ваши бронирования.")
	}
}

func (b *Bot) cmdStart(ctx context.Context, m *tgbotapi.Message, sess *Session) {
	client, err := b.identity.FindClientByTelegramID(ctx, m.From.ID)
	if err == nil {
		b.reply(m.Chat.ID, fmt.Sprintf(
			"Привет, %s! Вы уже зарегистрированы. Используйте /schedule для просмотра доступных дней.",
			client.Name,
		))
		return
	}
	if !errors.Is(err, service.ErrNotFound) {
		b.logger.Error().Err(err).Int64("telegram_id", m.From.ID).Msg("find client")
		b.reply(m.Chat.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	sess.Go(StateAskName)
	b.reply(m.Chat.ID, "Привет! Давайте зарегистрируем вас в нашем бассейне. Пожалуйста, введите ваше полное имя:")
}

func (b *Bot) finishRegistration(ctx context.Context, m *tgbotapi.Message, sess *Session) {
	answer := strings.TrimSpace(m.Text)
	defer sess.Reset()

	if answer != "Да" {
		msg := tgbotapi.NewMessage(m.Chat.ID, "Регистрация отменена. Начните заново с /start.")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(msg)
		return
	}

	telegramID := m.From.ID
	_, err := b.identity.RegisterClient(ctx, service.RegisterClientInput{
		Name:           sess.Registration.Name,
		Phone:          sess.Registration.Phone,
		TelegramID:     &telegramID,
		InitialBalance: b.cfg.SignupBalance,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			b.reply(m.Chat.ID, "Не получилось зарегистрироваться: "+userMessage(err))
			return
		}
		b.logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("register client")
		b.reply(m.Chat.ID, "Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf(
		"Регистрация завершена! Вам начислено %d посещений. Используйте /schedule для бронирования.",
		b.cfg.SignupBalance,
	))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(msg)
}

func (b *Bot) cmdSchedule(ctx context.Context, m *tgbotapi.Message) {
	if _, ok := b.requireClient(ctx, m.Chat.ID, m.From.ID); !ok {
		return
	}

	slots, err := b.slots.ListAvailable(ctx, time.Now().UTC(), b.cfg.ScheduleDays)
	if err != nil {
		b.logger.Error().Err(err).Msg("list available slots")
		b.reply(m.Chat.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}
	if len(slots) == 0 {
		b.reply(m.Chat.ID, "К сожалению, нет доступных дат для бронирования.")
		return
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, "Выберите дату:")
	msg.ReplyMarkup = DatesKeyboard(slots)
	b.send(msg)
}

func (b *Bot) cmdBalance(ctx context.Context, m *tgbotapi.Message) {
	client, ok := b.requireClient(ctx, m.Chat.ID, m.From.ID)
	if !ok {
		return
	}
	b.reply(m.Chat.ID, fmt.Sprintf("Ваш баланс: %d посещений", client.SubscriptionBalance))
}

func (b *Bot) cmdMyBookings(ctx context.Context, m *tgbotapi.Message) {
	client, ok := b.requireClient(ctx, m.Chat.ID, m.From.ID)
	if !ok {
		return
	}

	bookings, err := b.bookings.ListForClient(ctx, client.ID, 10)
	if err != nil {
		b.logger.Error().Err(err).Str("client_id", client.ID.String()).Msg("list bookings")
		b.reply(m.Chat.ID, "Произошла ошибка. Попробуйте позже.")
		return
	}
	if len(bookings) == 0 {
		b.reply(m.Chat.ID, "У вас пока нет бронирований. Используйте /schedule.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Ваши бронирования:\n")
	for _, bk := range bookings {
		date := "?"
		if bk.Slot != nil {
			date = HumanDate(bk.Slot.Date)
		}
		fmt.Fprintf(&sb, "— %s: %s\n", date, statusLabel(bk.Status))
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, sb.String())
	if kb := BookingsKeyboard(bookings); len(kb.InlineKeyboard) > 0 {
		msg.ReplyMarkup = kb
	}
	b.send(msg)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	defer func() {
		_, _ = b.api.Request(tgbotapi.NewCallback(cq.ID, ""))
	}()

	data := cq.Data
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch {
	case data == CbAbort:
		b.edit(chatID, messageID, "Бронирование отменено.")

	case strings.HasPrefix(data, CbSelectDate):
		slotID, _ := Is(data, CbSelectDate)
		b.showSlotConfirmation(ctx, chatID, messageID, slotID)

	case strings.HasPrefix(data, CbConfirmSlot):
		slotID, _ := Is(data, CbConfirmSlot)
		b.bookSlot(ctx, cq, slotID)

	case strings.HasPrefix(data, CbCancelBooking):
		bookingID, _ := Is(data, CbCancelBooking)
		b.cancelOwnBooking(ctx, cq, bookingID)
	}
}

func (b *Bot) showSlotConfirmation(ctx context.Context, chatID int64, messageID int, slotID string) {
	slot, err := b.slots.Get(ctx, slotID)
	if err != nil {
		b.edit(chatID, messageID, "Выбранная дата больше недоступна.")
		return
	}
	if slot.Status != model.SlotStatusOpen || slot.AvailableSlots <= 0 {
		text := "Извините, выбранная дата больше недоступна."
		if slot.Reason != "" {
			text += "\n\nПричина: " + slot.Reason
		}
		b.edit(chatID, messageID, text)
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, fmt.Sprintf(
		"Вы выбрали дату: %s\nДоступно мест: %d\nПодтвердите бронирование:",
		HumanDate(slot.Date), slot.AvailableSlots,
	), ConfirmKeyboard(slotID))
	b.send(edit)
}

func (b *Bot) bookSlot(ctx context.Context, cq *tgbotapi.CallbackQuery, slotID string) {
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	client, err := b.identity.FindClientByTelegramID(ctx, cq.From.ID)
	if err != nil {
		b.edit(chatID, messageID, "Клиент не найден. Зарегистрируйтесь через /start")
		return
	}
	slot, err := b.slots.Get(ctx, slotID)
	if err != nil {
		b.edit(chatID, messageID, "Слот не найден.")
		return
	}

	booking, err := b.bookings.Create(ctx, client.ID, slot.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStateConflict):
			b.edit(chatID, messageID, userMessage(err))
		case errors.Is(err, service.ErrNotFound):
			b.edit(chatID, messageID, "Слот не найден.")
		default:
			b.logger.Error().Err(err).Str("slot_id", slotID).Msg("create booking")
			b.edit(chatID, messageID, "Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	// Остаток читаем заново — списание прошло в транзакции бронирования.
	client, err = b.identity.GetClient(ctx, client.ID.String())
	remaining := "?"
	if err == nil {
		remaining = fmt.Sprintf("%d", client.SubscriptionBalance)
	}

	b.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("slot_id", slotID).
		Msg("booking created")
	b.edit(chatID, messageID, fmt.Sprintf(
		"Бронирование на %s подтверждено! Осталось посещений: %s",
		HumanDate(slot.Date), remaining,
	))
}

func (b *Bot) cancelOwnBooking(ctx context.Context, cq *tgbotapi.CallbackQuery, bookingID string) {
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	client, err := b.identity.FindClientByTelegramID(ctx, cq.From.ID)
	if err != nil {
		b.edit(chatID, messageID, "Клиент не найден. Зарегистрируйтесь через /start")
		return
	}

	if err := b.bookings.CancelByClient(ctx, client.ID, bookingID); err != nil {
		switch {
		case errors.Is(err, service.ErrStateConflict), errors.Is(err, service.ErrPermissionDenied):
			b.edit(chatID, messageID, "Это бронирование нельзя отменить.")
		case errors.Is(err, service.ErrNotFound):
			b.edit(chatID, messageID, "Бронирование не найдено.")
		default:
			b.logger.Error().Err(err).Str("booking_id", bookingID).Msg("cancel booking")
			b.edit(chatID, messageID, "Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	b.edit(chatID, messageID, "Бронирование отменено. Посещение возвращено на абонемент.")
}

// requireClient находит клиента по Telegram ID или отправляет приглашение
// зарегистрироваться.
func (b *Bot) requireClient(ctx context.Context, chatID, telegramID int64) (*model.Client, bool) {
	client, err := b.identity.FindClientByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			b.reply(chatID, "Сначала зарегистрируйтесь через /start")
		} else {
			b.logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("find client")
			b.reply(chatID, "Произошла ошибка. Попробуйте позже.")
		}
		return nil, false
	}
	return client, true
}

// userMessage переводит бизнес-ошибку в короткое сообщение для клиента.
func userMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no available places"):
		return "Нет доступных мест."
	case strings.Contains(msg, "subscription balance is empty"):
		return "Недостаточно посещений. Пополните абонемент."
	case strings.Contains(msg, "telegram account already exists"):
		return "вы уже зарегистрированы в системе."
	case strings.Contains(msg, "already exists"):
		return "такой клиент уже есть в системе."
	default:
		return "Операция отклонена."
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn().Err(err).Msg("send message")
	}
}
