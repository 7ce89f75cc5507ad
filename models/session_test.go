package models_test

import (
	"encoding/json"
	"testing"

	"github.com/maynagashev/roomrent/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ответ бэкенда на вход в "человеческом" форматировании.
const loginResponseJSON = `{
	"access": "access-token",
	"refresh": "refresh-token",
	"id": 7,
	"username": "ram",
	"isAdmin": false,
	"address": {"city": "Kathmandu"}
}`

func TestSession_UnmarshalJSON(t *testing.T) {
	var s models.Session
	require.NoError(t, json.Unmarshal([]byte(loginResponseJSON), &s))

	assert.Equal(t, "access-token", s.Access)
	assert.Equal(t, "refresh-token", s.Refresh)
	assert.Equal(t, "ram", s.ProfileString("username"))
	assert.Equal(t, "7", s.ProfileString("id"), "нестроковое поле отдается сырым JSON")
	assert.JSONEq(t, `{"city":"Kathmandu"}`, string(s.Profile["address"]))
	assert.Empty(t, s.ProfileString("missing"))
	assert.False(t, s.IsZero())
}

func TestSession_RoundTrip(t *testing.T) {
	var first models.Session
	require.NoError(t, json.Unmarshal([]byte(loginResponseJSON), &first))

	data, err := json.Marshal(first)
	require.NoError(t, err)
	assert.JSONEq(t, loginResponseJSON, string(data), "все поля профиля сохраняются")

	var second models.Session
	require.NoError(t, json.Unmarshal(data, &second))
	assert.Equal(t, first, second, "повторная загрузка дает равную сессию")
}

func TestSession_WithoutRefresh(t *testing.T) {
	s := models.Session{Access: "only-access"}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"access":"only-access"}`, string(data))
}

func TestSession_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Не объект", input: `[1,2]`},
		{name: "Токен не строка", input: `{"access": 5}`},
		{name: "Refresh не строка", input: `{"access": "a", "refresh": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s models.Session
			assert.Error(t, json.Unmarshal([]byte(tt.input), &s))
		})
	}
}

func TestSession_IsZero(t *testing.T) {
	assert.True(t, models.Session{}.IsZero())
	assert.False(t, models.Session{Refresh: "r"}.IsZero())
}

func TestRoom_Images(t *testing.T) {
	room := models.Room{Image: "media/a.jpg", Image2: "media/c.jpg"}
	assert.Equal(t, []string{"media/a.jpg", "media/c.jpg"}, room.Images())
	assert.Empty(t, models.Room{}.Images())
}
