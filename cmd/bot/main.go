package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aquastaff/pool-reservation/internal/bot"
	"github.com/aquastaff/pool-reservation/internal/config"
	"github.com/aquastaff/pool-reservation/internal/db"
	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
	"github.com/aquastaff/pool-reservation/internal/service"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	_ = godotenv.Load()

	// 1. Конфигурация из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load db config")
	}
	botCfg, err := config.LoadBotConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load bot config")
	}

	// 2. Подключение к БД; схему ведёт админка, бот только мигрирует
	// недостающее при первом запуске.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("init db")
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("auto migrate")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 3. Репозитории и сервисы.
	slotRepo := repository.NewGormSlotRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	clientRepo := repository.NewGormClientRepository(gormDB)
	staffRepo := repository.NewGormStaffRepository(gormDB)
	roleRepo := repository.NewGormRoleRepository(gormDB)
	visitRepo := repository.NewGormVisitRepository(gormDB)

	identitySvc := service.NewIdentityService(gormDB, staffRepo, roleRepo, clientRepo)
	slotSvc := service.NewSlotService(gormDB, slotRepo, bookingRepo)
	bookingSvc := service.NewBookingService(gormDB, bookingRepo, slotRepo, clientRepo, visitRepo)

	// 4. Telegram API.
	api, err := tgbotapi.NewBotAPI(botCfg.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot api")
	}
	api.Debug = false
	logger.Info().Str("bot", api.Self.UserName).Msg("authorized")

	// 5. Лонг-поллинг до сигнала завершения.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bot.New(api, identitySvc, bookingSvc, slotSvc, botCfg, logger)
	b.Run(ctx)
}
