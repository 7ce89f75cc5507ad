package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ключи токенов в ответе бэкенда на вход/регистрацию.
const (
	sessionFieldAccess  = "access"
	sessionFieldRefresh = "refresh"
)

// Session - аутентифицированная личность пользователя.
// Помимо токенов хранит все остальные поля профиля из ответа бэкенда
// как есть, чтобы сохранение и загрузка не теряли данные.
type Session struct {
	Access  string                     // Bearer токен доступа
	Refresh string                     // Токен обновления (может отсутствовать)
	Profile map[string]json.RawMessage // Остальные поля профиля, в компактном JSON
}

// IsZero сообщает, что сессия пуста (пользователь не вошел).
func (s Session) IsZero() bool {
	return s.Access == "" && s.Refresh == "" && len(s.Profile) == 0
}

// ProfileString возвращает строковое поле профиля или пустую строку.
func (s Session) ProfileString(name string) string {
	raw, ok := s.Profile[name]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		// Поле есть, но это не строка (например, число) - отдаем сырой JSON
		return string(raw)
	}
	return value
}

// MarshalJSON собирает плоский объект: токены и поля профиля на одном уровне.
func (s Session) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.Profile)+2)
	for k, v := range s.Profile {
		out[k] = v
	}
	access, err := json.Marshal(s.Access)
	if err != nil {
		return nil, err
	}
	out[sessionFieldAccess] = access
	if s.Refresh != "" {
		refresh, errRefresh := json.Marshal(s.Refresh)
		if errRefresh != nil {
			return nil, errRefresh
		}
		out[sessionFieldRefresh] = refresh
	}
	return json.Marshal(out)
}

// UnmarshalJSON разбирает ответ бэкенда, раскладывая токены по полям.
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("ошибка декодирования сессии: %w", err)
	}

	*s = Session{}
	for key, value := range raw {
		switch key {
		case sessionFieldAccess:
			if err := json.Unmarshal(value, &s.Access); err != nil {
				return fmt.Errorf("поле %q сессии: %w", key, err)
			}
		case sessionFieldRefresh:
			if err := json.Unmarshal(value, &s.Refresh); err != nil {
				return fmt.Errorf("поле %q сессии: %w", key, err)
			}
		default:
			// Компактный вид делает повторную сериализацию побайтно стабильной
			var buf bytes.Buffer
			if err := json.Compact(&buf, value); err != nil {
				return fmt.Errorf("поле %q сессии: %w", key, err)
			}
			if s.Profile == nil {
				s.Profile = make(map[string]json.RawMessage)
			}
			s.Profile[key] = buf.Bytes()
		}
	}
	return nil
}
