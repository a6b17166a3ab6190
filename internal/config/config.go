package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Режимы применения промокодов
const (
	PromoScopePerUser = "per_user" // код одноразовый для каждого пользователя
	PromoScopeGlobal  = "global"   // код деактивируется после первого применения
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Promo    PromoConfig
	Catalog  CatalogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	// Secret: симметричный ключ подписи. Обязателен: без него приложение не стартует.
	Secret string `mapstructure:"secret"`

	ExpirationHrs int `mapstructure:"expirationHrs"`
}

// EmailConfig содержит настройки почтового шлюза.
// Если APIKey пуст, используется консольный бэкенд (коды печатаются в лог).
type EmailConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

// PromoConfig содержит политику промокодов
type PromoConfig struct {
	// CodeScope: "per_user" или "global". По умолчанию "global".
	CodeScope string `mapstructure:"code_scope"`
}

// CatalogConfig содержит настройки каталога
type CatalogConfig struct {
	// PurgeRetentionMin: через сколько минут после мягкого удаления строка товара
	// удаляется физически. Короткое окно: удаление нужно прежде всего для
	// быстрого скрытия скомпрометированных учетных данных.
	PurgeRetentionMin int `mapstructure:"purge_retention_min"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8000")
	vip.SetDefault("jwt.expirationHrs", 24*7)
	vip.SetDefault("promo.code_scope", PromoScopeGlobal)
	vip.SetDefault("catalog.purge_retention_min", 10)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	vip.BindEnv("email.api_key", "EMAIL_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("promo.code_scope", "PROMO_CODE_SCOPE")
	vip.BindEnv("catalog.purge_retention_min", "CATALOG_PURGE_RETENTION_MIN")

	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит файл и привязанные env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("Email API Key Set: %t", cfg.Email.APIKey != "")
		log.Printf("Promo Code Scope: %s", cfg.Promo.CodeScope)
		log.Printf("Catalog Purge Retention (min): %d", cfg.Catalog.PurgeRetentionMin)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Promo.CodeScope != PromoScopePerUser && cfg.Promo.CodeScope != PromoScopeGlobal {
		return nil, fmt.Errorf("promo code scope must be %q or %q, got %q", PromoScopePerUser, PromoScopeGlobal, cfg.Promo.CodeScope)
	}
	if cfg.Catalog.PurgeRetentionMin <= 0 {
		cfg.Catalog.PurgeRetentionMin = 10
	}

	return &cfg, nil
}
