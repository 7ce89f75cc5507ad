package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	defaultServerPort = "8081"

	// Переменные окружения.
	envServerPort  = "SERVER_PORT"
	envTLSCertFile = "TLS_CERT_FILE"
	envTLSKeyFile  = "TLS_KEY_FILE"
	envDatabaseDSN = "DATABASE_DSN"
	envJWTSecret   = "JWT_SECRET"       //nolint:gosec // имя переменной окружения
	envEsewaSecret = "ESEWA_SECRET_KEY" //nolint:gosec // имя переменной окружения
	envProductCode = "ESEWA_PRODUCT_CODE"
)

// config хранит конфигурацию сервиса подписи.
type config struct {
	Port        string
	CertFile    string
	KeyFile     string
	DatabaseDSN string
	JWTSecret   string
	EsewaSecret string
	ProductCode string
}

// TLSEnabled сообщает, заданы ли сертификат и ключ.
func (c *config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Флаг важнее переменной окружения, переменная важнее значения по умолчанию.
func parseFlags() (*config, error) {
	cfg := &config{}

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт сервиса подписи (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к базе данных (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Ключ проверки токенов доступа бэкенда (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.EsewaSecret, "esewa-secret", "",
		fmt.Sprintf("Секрет подписи платежей eSewa (env: %s)", envEsewaSecret))
	flag.StringVar(&cfg.ProductCode, "product-code", "",
		fmt.Sprintf("Код продукта eSewa (env: %s, default: EPAYTEST)", envProductCode))

	flag.Parse()

	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.CertFile, envTLSCertFile, "")
	applyEnv(&cfg.KeyFile, envTLSKeyFile, "")
	applyEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	applyEnv(&cfg.JWTSecret, envJWTSecret, "")
	applyEnv(&cfg.EsewaSecret, envEsewaSecret, "")
	applyEnv(&cfg.ProductCode, envProductCode, "")

	// Проверяем обязательные параметры
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("для TLS нужны и сертификат, и ключ (--cert-file и --key-file)")
	}
	if cfg.DatabaseDSN == "" {
		return nil, errors.New("не указана строка подключения к БД (--database-dsn или " + envDatabaseDSN + ")")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("не указан ключ проверки токенов (--jwt-secret или " + envJWTSecret + ")")
	}
	if cfg.EsewaSecret == "" {
		return nil, errors.New("не указан секрет подписи платежей (--esewa-secret или " + envEsewaSecret + ")")
	}

	return cfg, nil
}

// applyEnv подставляет переменную окружения key, если флаг не задан, иначе fallback.
func applyEnv(target *string, key, fallback string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*target = value
		return
	}
	*target = fallback
}
