package config

import "fmt"

// AdminConfig — настройки HTTP-сервера админки.
type AdminConfig struct {
	Addr string
	// Секрет подписи JWT и срок жизни токена в минутах.
	JWTSecret     string
	JWTTTLMinutes int
	// Пароль учётки admin при первичном заполнении БД.
	SeedAdminPassword string
}

func LoadAdminConfig() (*AdminConfig, error) {
	cfg := &AdminConfig{
		Addr:              getEnv("ADMIN_ADDR", ":8080"),
		JWTSecret:         getEnv("ADMIN_JWT_SECRET", ""),
		JWTTTLMinutes:     getEnvInt("ADMIN_JWT_TTL_MIN", 720),
		SeedAdminPassword: getEnv("ADMIN_SEED_PASSWORD", "admin"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("invalid admin config: ADMIN_JWT_SECRET must not be empty")
	}

	return cfg, nil
}

// BotConfig — настройки Telegram-бота.
type BotConfig struct {
	Token string
	// Стартовый баланс посещений при саморегистрации.
	SignupBalance int
	// Сколько ближайших дат показывать в /schedule.
	ScheduleDays int
}

func LoadBotConfig() (*BotConfig, error) {
	cfg := &BotConfig{
		Token:         getEnv("BOT_TOKEN", ""),
		SignupBalance: getEnvInt("BOT_SIGNUP_BALANCE", 10),
		ScheduleDays:  getEnvInt("BOT_SCHEDULE_DAYS", 14),
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("invalid bot config: BOT_TOKEN must not be empty")
	}

	return cfg, nil
}

// BootstrapConfig — параметры автосоздания дней посещений.
type BootstrapConfig struct {
	Days     int
	Capacity int
}

func LoadBootstrapConfig() *BootstrapConfig {
	return &BootstrapConfig{
		Days:     getEnvInt("SLOTS_BOOTSTRAP_DAYS", 30),
		Capacity: getEnvInt("SLOTS_BOOTSTRAP_CAPACITY", 10),
	}
}
