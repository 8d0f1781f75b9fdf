package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aquastaff/pool-reservation/internal/config"
	"github.com/aquastaff/pool-reservation/internal/db"
	"github.com/aquastaff/pool-reservation/internal/model"
	"github.com/aquastaff/pool-reservation/internal/repository"
	"github.com/aquastaff/pool-reservation/internal/server"
	"github.com/aquastaff/pool-reservation/internal/service"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	// .env опционален, в контейнере конфиг приходит из окружения.
	_ = godotenv.Load()

	// 1. Конфигурация из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load db config")
	}
	adminCfg, err := config.LoadAdminConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load admin config")
	}
	bootstrapCfg := config.LoadBootstrapConfig()

	// 2. Подключение к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("init db")
	}

	// 3. Миграции и первичное заполнение.
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("auto migrate")
	}
	if err := model.Seed(gormDB, adminCfg.SeedAdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("seed")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("sql DB")
	}
	defer sqlDB.Close()

	// 4. Репозитории.
	slotRepo := repository.NewGormSlotRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	clientRepo := repository.NewGormClientRepository(gormDB)
	staffRepo := repository.NewGormStaffRepository(gormDB)
	roleRepo := repository.NewGormRoleRepository(gormDB)
	visitRepo := repository.NewGormVisitRepository(gormDB)
	logRepo := repository.NewGormSubscriptionLogRepository(gormDB)

	// 5. Бизнес-сервисы.
	identitySvc := service.NewIdentityService(gormDB, staffRepo, roleRepo, clientRepo)
	slotSvc := service.NewSlotService(gormDB, slotRepo, bookingRepo)
	bookingSvc := service.NewBookingService(gormDB, bookingRepo, slotRepo, clientRepo, visitRepo)
	subscriptionSvc := service.NewSubscriptionService(gormDB, clientRepo, logRepo)

	// 6. Bootstrap: дни посещений на ближайший период.
	ctx := context.Background()
	created, err := slotSvc.EnsureUpcomingSlots(ctx, bootstrapCfg.Days, bootstrapCfg.Capacity)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap slots")
	}
	if created > 0 {
		logger.Info().Int("created", created).Msg("bootstrapped daily slots")
	}

	// 7. HTTP-сервер админки.
	e := echo.New()
	e.HideBanner = true
	srv := server.New(identitySvc, slotSvc, bookingSvc, subscriptionSvc, adminCfg, bootstrapCfg)
	srv.Register(e)

	go func() {
		logger.Info().Str("addr", adminCfg.Addr).Msg("admin API listening")
		if err := e.Start(adminCfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http serve")
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down admin API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
