package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port    int
		OpsPort int // Порт для служебного роутера (health, metrics)
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	Redis struct {
		Addr     string
		CacheTTL int // Время жизни кеша сводок в минутах
		Enabled  bool
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Debt struct {
		MonthlyExtraBudget  float64 // Ежемесячный бюджет сверх минимальных платежей
		ScheduleCapMonths   int     // Потолок графика амортизации
		SimulationCapMonths int     // Потолок симуляции стратегий
		KeyRateMargin       float64 // Надбавка к ключевой ставке по умолчанию
	}
	AccountPrivateKey string // Приватный ключ для расшифровки номеров счетов
	AccountPublicKey  string // Публичный ключ для шифрования номеров счетов
	AccountHMACKey    string // Ключ для HMAC-подписи номеров счетов
}

// NewConfig создает новый экземпляр конфигурации
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("OPS_PORT", 8081)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "finance_db")

	// Настройки Redis
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_CACHE_TTL", 10)
	v.SetDefault("REDIS_ENABLED", true)

	// Настройки JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")

	// Настройки движка долгов
	v.SetDefault("DEBT_MONTHLY_EXTRA_BUDGET", 500.0)
	v.SetDefault("DEBT_SCHEDULE_CAP_MONTHS", 360)
	v.SetDefault("DEBT_SIMULATION_CAP_MONTHS", 600)
	v.SetDefault("DEBT_KEY_RATE_MARGIN", 5.0)

	// Настройки шифрования номеров счетов
	v.SetDefault("ACCOUNT_PRIVATE_KEY", "")
	v.SetDefault("ACCOUNT_PUBLIC_KEY", "")
	v.SetDefault("ACCOUNT_HMAC_KEY", "your-account-hmac-key-here")

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.OpsPort = v.GetInt("OPS_PORT")
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("неверный порт сервера: %d", cfg.Server.Port)
	}

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.CacheTTL = v.GetInt("REDIS_CACHE_TTL")
	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Debt.MonthlyExtraBudget = v.GetFloat64("DEBT_MONTHLY_EXTRA_BUDGET")
	cfg.Debt.ScheduleCapMonths = v.GetInt("DEBT_SCHEDULE_CAP_MONTHS")
	cfg.Debt.SimulationCapMonths = v.GetInt("DEBT_SIMULATION_CAP_MONTHS")
	cfg.Debt.KeyRateMargin = v.GetFloat64("DEBT_KEY_RATE_MARGIN")
	if cfg.Debt.MonthlyExtraBudget < 0 {
		return nil, fmt.Errorf("бюджет досрочного погашения не может быть отрицательным")
	}
	if cfg.Debt.ScheduleCapMonths <= 0 || cfg.Debt.SimulationCapMonths <= 0 {
		return nil, fmt.Errorf("потолки итераций должны быть положительными")
	}

	cfg.AccountPrivateKey = v.GetString("ACCOUNT_PRIVATE_KEY")
	cfg.AccountPublicKey = v.GetString("ACCOUNT_PUBLIC_KEY")
	cfg.AccountHMACKey = v.GetString("ACCOUNT_HMAC_KEY")

	return cfg, nil
}
