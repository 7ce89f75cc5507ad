package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/maynagashev/roomrent/models"
)

const (
	sessionFilePerm = 0600
	sessionDirPerm  = 0700
	lockSuffix      = ".lock"
)

// FilePersister хранит сессию в JSON файле <dir>/userInfo.json.
// Доступ к файлу защищен межпроцессной блокировкой flock.
type FilePersister struct {
	path string
	lock *flock.Flock
}

// NewFilePersister создает FilePersister для каталога dir.
func NewFilePersister(dir string) *FilePersister {
	path := filepath.Join(dir, StorageKey+".json")
	return &FilePersister{
		path: path,
		lock: flock.New(path + lockSuffix),
	}
}

// Path возвращает путь к файлу сессии.
func (p *FilePersister) Path() string {
	return p.path
}

// Load читает сессию из файла.
func (p *FilePersister) Load() (models.Session, error) {
	var s models.Session
	err := withFileLock(p.lock, func() error {
		data, err := os.ReadFile(p.path)
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoSession
		}
		if err != nil {
			return fmt.Errorf("ошибка чтения файла сессии '%s': %w", p.path, err)
		}
		if err = json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ошибка декодирования файла сессии '%s': %w", p.path, err)
		}
		return nil
	})
	return s, err
}

// Save атомарно перезаписывает файл сессии (временный файл + rename).
func (p *FilePersister) Save(s models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("ошибка кодирования сессии: %w", err)
	}
	return withFileLock(p.lock, func() error {
		return writeFileAtomic(p.path, data)
	})
}

// Remove удаляет файл сессии.
func (p *FilePersister) Remove() error {
	return withFileLock(p.lock, func() error {
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("ошибка удаления файла сессии '%s': %w", p.path, err)
		}
		slog.Debug("Файл сессии удален", "path", p.path)
		return nil
	})
}

// withFileLock выполняет fn под эксклюзивной блокировкой lock.
func withFileLock(lock *flock.Flock, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(lock.Path()), sessionDirPerm); err != nil {
		return fmt.Errorf("ошибка создания каталога сессии: %w", err)
	}
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("ошибка блокировки файла '%s': %w", lock.Path(), err)
	}
	defer func() {
		if errUnlock := lock.Unlock(); errUnlock != nil {
			slog.Error("Ошибка при снятии блокировки файла", "lockPath", lock.Path(), "error", errUnlock)
		}
	}()
	return fn()
}

// writeFileAtomic пишет data во временный файл рядом с path и переименовывает его.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	// Если rename не случился, временный файл не нужен
	defer os.Remove(tmpName)

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	if err = tmp.Chmod(sessionFilePerm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("ошибка установки прав на файл: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия временного файла: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("ошибка переименования '%s' в '%s': %w", tmpName, path, err)
	}
	return nil
}
