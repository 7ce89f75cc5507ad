package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/maynagashev/roomrent/models"
	"github.com/tobischo/gokeepasslib/v3"
	"github.com/tobischo/gokeepasslib/v3/wrappers"
)

// CustomDataKeySession - ключ CustomData, под которым в KDBX лежит JSON сессии.
const CustomDataKeySession = "RoomRent." + StorageKey

// KdbxPersister хранит сессию в зашифрованном файле KeePass (KDBX)
// в пользовательских данных метаданных базы.
type KdbxPersister struct {
	path     string
	password string
	lock     *flock.Flock
}

// NewKdbxPersister создает KdbxPersister для файла path с мастер-паролем password.
func NewKdbxPersister(path, password string) (*KdbxPersister, error) {
	if password == "" {
		return nil, errors.New("пароль KDBX не может быть пустым")
	}
	return &KdbxPersister{
		path:     path,
		password: password,
		lock:     flock.New(path + lockSuffix),
	}, nil
}

// Load извлекает сессию из CustomData базы.
func (p *KdbxPersister) Load() (models.Session, error) {
	var s models.Session
	err := withFileLock(p.lock, func() error {
		db, err := p.open()
		if err != nil {
			return err
		}
		value, found := getCustomDataValue(db.Content.Meta.CustomData, CustomDataKeySession)
		if !found {
			return ErrNoSession
		}
		if err = json.Unmarshal([]byte(value), &s); err != nil {
			return fmt.Errorf("ошибка декодирования сессии из KDBX: %w", err)
		}
		return nil
	})
	return s, err
}

// Save записывает сессию в базу, создавая файл при необходимости.
func (p *KdbxPersister) Save(s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("ошибка кодирования сессии: %w", err)
	}
	return withFileLock(p.lock, func() error {
		db, errOpen := p.open()
		if errors.Is(errOpen, ErrNoSession) {
			slog.Info("Файл KDBX не найден, создаем новый.", "path", p.path)
			db = p.newDatabase()
		} else if errOpen != nil {
			return errOpen
		}
		meta := db.Content.Meta
		meta.CustomData = setCustomDataValue(meta.CustomData, CustomDataKeySession, string(data))
		touchRootGroup(db)
		return p.save(db)
	})
}

// Remove удаляет сессию из базы. Остальное содержимое файла не трогаем.
func (p *KdbxPersister) Remove() error {
	return withFileLock(p.lock, func() error {
		db, err := p.open()
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		if err != nil {
			return err
		}
		meta := db.Content.Meta
		before := len(meta.CustomData)
		meta.CustomData = removeCustomDataValue(meta.CustomData, CustomDataKeySession)
		if len(meta.CustomData) == before {
			return nil
		}
		touchRootGroup(db)
		return p.save(db)
	})
}

// open открывает и дешифрует файл. Отсутствие файла - ErrNoSession.
func (p *KdbxPersister) open() (*gokeepasslib.Database, error) {
	file, err := os.Open(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", p.path, err)
	}
	defer file.Close()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(p.password)
	if err = gokeepasslib.NewDecoder(file).Decode(db); err != nil {
		return nil, fmt.Errorf("ошибка дешифрования файла '%s': %w", p.path, err)
	}
	if err = db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("ошибка разблокировки защищенных полей: %w", err)
	}
	if db.Content == nil || db.Content.Meta == nil {
		return nil, errors.New("база данных, ее содержимое или метаданные не инициализированы")
	}
	return db, nil
}

func (p *KdbxPersister) newDatabase() *gokeepasslib.Database {
	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(p.password)
	db.Content.Meta.DatabaseName = "roomrent"
	return db
}

// save кодирует базу в память и атомарно заменяет файл.
func (p *KdbxPersister) save(db *gokeepasslib.Database) error {
	if err := db.LockProtectedEntries(); err != nil {
		slog.Warn("Не удалось заблокировать поля перед сохранением", "error", err)
	}
	var buf bytes.Buffer
	if err := gokeepasslib.NewEncoder(&buf).Encode(db); err != nil {
		return fmt.Errorf("ошибка кодирования БД '%s': %w", p.path, err)
	}
	return writeFileAtomic(p.path, buf.Bytes())
}

// touchRootGroup обновляет время модификации корневой группы.
func touchRootGroup(db *gokeepasslib.Database) {
	if db.Content == nil || db.Content.Root == nil || len(db.Content.Root.Groups) == 0 {
		slog.Warn("Не удалось обновить LastModificationTime: корневая группа отсутствует")
		return
	}
	modTime := wrappers.TimeWrapper{Time: time.Now().UTC()}
	db.Content.Root.Groups[0].Times.LastModificationTime = &modTime
}

// getCustomDataValue ищет значение по ключу в слайсе CustomData.
func getCustomDataValue(customData []gokeepasslib.CustomData, key string) (string, bool) {
	for _, item := range customData {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

// setCustomDataValue обновляет или добавляет значение в слайс CustomData.
func setCustomDataValue(customData []gokeepasslib.CustomData, key, value string) []gokeepasslib.CustomData {
	for i := range customData {
		if customData[i].Key == key {
			customData[i].Value = value
			return customData
		}
	}
	return append(customData, gokeepasslib.CustomData{Key: key, Value: value})
}

// removeCustomDataValue удаляет значение из слайса CustomData по ключу.
func removeCustomDataValue(customData []gokeepasslib.CustomData, key string) []gokeepasslib.CustomData {
	kept := make([]gokeepasslib.CustomData, 0, len(customData))
	for _, item := range customData {
		if item.Key != key {
			kept = append(kept, item)
		}
	}
	return kept
}
