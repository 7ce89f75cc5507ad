package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/auth"
	"github.com/maynagashev/roomrent/internal/payment"
	"github.com/maynagashev/roomrent/internal/rent"
	"github.com/maynagashev/roomrent/internal/session"
	"github.com/maynagashev/roomrent/internal/tui"
	"github.com/maynagashev/roomrent/models"
)

const (
	logDir             = "logs"
	logFileName        = "client.log"
	logFilePermissions = 0o600
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
//
//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
var (
	version    = "dev"
	buildDate  = "unknown"
	commitHash = "N/A"
)

// setupLogging настраивает логирование в файл logs/client.log.
// TUI занимает терминал, поэтому в stdout логи не пишутся.
func setupLogging() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для логов: %w", err)
	}
	logPath := filepath.Join(logDir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть лог-файл: %w", err)
	}
	logHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))
	slog.Info("Логгер инициализирован", "path", logPath)
	return logFile, nil
}

func printVersion() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
	log.Println("RoomRent Client")
	log.Printf("Version: %s", version)
	log.Printf("Build Date: %s", buildDate)
	log.Printf("Commit Hash: %s", commitHash)
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}
	if cfg.Version {
		printVersion()
		return
	}

	logFile, err := setupLogging()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logFile.Close()

	if err = run(cfg); err != nil {
		slog.Error("Клиент завершился с ошибкой", "error", err)
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		logFile.Close()
		os.Exit(1) //nolint:gocritic // лог-файл закрыт вручную
	}
}

func run(cfg *config) error {
	slog.Info("Запуск RoomRent",
		"api_url", cfg.APIURL,
		"signer_url", cfg.SignerURL,
		"session_store", cfg.SessionStore,
		"session_path", cfg.SessionPath,
		"local_signing", cfg.LocalSigning(),
		"debug_mode", cfg.Debug,
	)

	notifier := &tui.ProgramNotifier{}
	deps, cleanup, err := setupDependencies(cfg, notifier)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(deps, notifier)
}

// newPersister выбирает хранилище сессии по конфигурации.
func newPersister(cfg *config) (session.Persister, error) {
	switch cfg.SessionStore {
	case sessionStoreKdbx:
		p, err := session.NewKdbxPersister(cfg.SessionPath, cfg.KdbxPassword)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания хранилища kdbx: %w", err)
		}
		return p, nil
	case sessionStoreFile:
		if err := os.MkdirAll(cfg.SessionPath, 0o700); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога сессии: %w", err)
		}
		return session.NewFilePersister(cfg.SessionPath), nil
	default:
		return nil, fmt.Errorf("неизвестное хранилище сессии %q", cfg.SessionStore)
	}
}

// newSigner возвращает локальный HMAC подписчик, если задан секрет,
// иначе подписчик через сервис подписи.
func newSigner(cfg *config, client api.Client, sessions *session.Store) (payment.Signer, error) {
	if cfg.LocalSigning() {
		slog.Warn("Платежи подписываются на клиенте, используйте только с тестовым шлюзом")
		return payment.NewHMACSigner(cfg.SigningSecret)
	}
	return payment.NewRemoteSigner(client, sessions), nil
}

// setupDependencies собирает зависимости TUI. cleanup отменяет запросы в полете.
func setupDependencies(cfg *config, notifier auth.Notifier) (tui.Deps, func(), error) {
	client := api.NewHTTPClient(cfg.APIURL, api.WithSignerURL(cfg.SignerURL))

	persister, err := newPersister(cfg)
	if err != nil {
		return tui.Deps{}, nil, err
	}
	sessions := session.NewStore(persister)

	var restored *models.Session
	if sess, ok := sessions.Get(); ok {
		restored = &sess
	}
	dispatcher := auth.NewDispatcher(client, sessions, auth.NewStore(auth.InitialState(restored)), notifier)

	signer, err := newSigner(cfg, client, sessions)
	if err != nil {
		dispatcher.Close()
		return tui.Deps{}, nil, err
	}

	calc := rent.NewCalculator()
	deps := tui.Deps{
		Dispatcher: dispatcher,
		Rooms:      client,
		Checkout:   payment.NewCheckout(calc, sessions, client, cfg.GatewayURL),
		NewForm: func() (*payment.Form, error) {
			return payment.NewForm(payment.Config{
				ClientBaseURL: cfg.ClientURL,
				ProductCode:   cfg.ProductCode,
				Signer:        signer,
			})
		},
		Calculator: calc,
		PagePath:   cfg.PaymentPage,
		Debug:      cfg.Debug,
	}
	return deps, dispatcher.Close, nil
}
