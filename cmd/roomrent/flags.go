package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maynagashev/roomrent/internal/payment"
)

const (
	defaultAPIURL      = "http://localhost:8000"
	defaultClientURL   = "http://localhost:5173"
	defaultPaymentPage = "payment.html"
	defaultKdbxPath    = "roomrent.kdbx"
	defaultSessionDir  = "."

	sessionStoreFile = "file"
	sessionStoreKdbx = "kdbx"

	// Переменные окружения.
	envAPIURL        = "ROOMRENT_API_URL"
	envSignerURL     = "ROOMRENT_SIGNER_URL"
	envClientURL     = "ROOMRENT_CLIENT_URL"
	envGatewayURL    = "ESEWA_GATEWAY_URL"
	envProductCode   = "ESEWA_PRODUCT_CODE"
	envSessionStore  = "ROOMRENT_SESSION_STORE"
	envSessionPath   = "ROOMRENT_SESSION_PATH"
	envPaymentPage   = "ROOMRENT_PAYMENT_PAGE"
	envKdbxPassword  = "ROOMRENT_KDBX_PASSWORD" //nolint:gosec // имя переменной окружения
	envSigningSecret = "ESEWA_SECRET_KEY"       //nolint:gosec // имя переменной окружения
)

// config хранит конфигурацию клиента.
type config struct {
	APIURL       string
	SignerURL    string
	ClientURL    string
	GatewayURL   string
	ProductCode  string
	SessionStore string
	SessionPath  string
	PaymentPage  string
	Debug        bool
	Version      bool

	// Секреты читаются только из окружения.
	KdbxPassword  string
	SigningSecret string
}

// LocalSigning сообщает, что платежи подписываются на клиенте (тестовый шлюз).
func (c *config) LocalSigning() bool {
	return c.SigningSecret != ""
}

// parseFlags разбирает флаги и переменные окружения.
// Флаг важнее переменной окружения, переменная важнее значения по умолчанию.
func parseFlags() (*config, error) {
	cfg := &config{}

	flag.StringVar(&cfg.APIURL, "api-url", "",
		fmt.Sprintf("URL бэкенда маркетплейса (env: %s, default: %s)", envAPIURL, defaultAPIURL))
	flag.StringVar(&cfg.SignerURL, "signer-url", "",
		fmt.Sprintf("URL сервиса подписи платежей (env: %s)", envSignerURL))
	flag.StringVar(&cfg.ClientURL, "client-url", "",
		fmt.Sprintf("База URL возврата после оплаты (env: %s, default: %s)", envClientURL, defaultClientURL))
	flag.StringVar(&cfg.GatewayURL, "gateway-url", "",
		fmt.Sprintf("URL формы шлюза eSewa (env: %s)", envGatewayURL))
	flag.StringVar(&cfg.ProductCode, "product-code", "",
		fmt.Sprintf("Код продукта eSewa (env: %s, default: %s)", envProductCode, payment.DefaultProductCode))
	flag.StringVar(&cfg.SessionStore, "session-store", "",
		fmt.Sprintf("Хранилище сессии: file или kdbx (env: %s, default: file)", envSessionStore))
	flag.StringVar(&cfg.SessionPath, "session-path", "",
		fmt.Sprintf("Каталог для file или путь к файлу для kdbx (env: %s)", envSessionPath))
	flag.StringVar(&cfg.PaymentPage, "payment-page", "",
		fmt.Sprintf("Файл страницы автоотправки формы оплаты (env: %s, default: %s)", envPaymentPage, defaultPaymentPage))
	flag.BoolVar(&cfg.Debug, "debug", false, "Включить режим отладки TUI")
	flag.BoolVar(&cfg.Version, "version", false, "Показать версию и дату сборки")

	flag.Parse()

	if cfg.Version {
		return cfg, nil
	}

	applyEnv(&cfg.APIURL, envAPIURL, defaultAPIURL)
	applyEnv(&cfg.SignerURL, envSignerURL, "")
	applyEnv(&cfg.ClientURL, envClientURL, defaultClientURL)
	applyEnv(&cfg.GatewayURL, envGatewayURL, payment.DefaultGatewayURL)
	applyEnv(&cfg.ProductCode, envProductCode, payment.DefaultProductCode)
	applyEnv(&cfg.SessionStore, envSessionStore, sessionStoreFile)
	applyEnv(&cfg.PaymentPage, envPaymentPage, defaultPaymentPage)
	applyEnv(&cfg.KdbxPassword, envKdbxPassword, "")
	applyEnv(&cfg.SigningSecret, envSigningSecret, "")

	switch cfg.SessionStore {
	case sessionStoreFile:
		applyEnv(&cfg.SessionPath, envSessionPath, defaultSessionDir)
	case sessionStoreKdbx:
		applyEnv(&cfg.SessionPath, envSessionPath, defaultKdbxPath)
		if cfg.KdbxPassword == "" {
			return nil, errors.New("для хранилища kdbx нужен пароль (" + envKdbxPassword + ")")
		}
	default:
		return nil, fmt.Errorf("неизвестное хранилище сессии %q, ожидается file или kdbx", cfg.SessionStore)
	}

	if cfg.SignerURL == "" && !cfg.LocalSigning() {
		return nil, errors.New("не задан сервис подписи (--signer-url или " + envSignerURL +
			") и нет секрета для локальной подписи (" + envSigningSecret + ")")
	}

	return cfg, nil
}

// applyEnv подставляет переменную окружения key, если флаг не задан, иначе fallback.
func applyEnv(target *string, key, fallback string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
		return
	}
	*target = fallback
}
