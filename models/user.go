package models

// LoginRequest представляет тело запроса на вход.
// Бэкенд принимает email или имя пользователя в поле username.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Name        string `json:"name"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"userType"`
}

// Типы пользователей маркетплейса.
const (
	UserTypeLandlord = "Landlord"
	UserTypeTenant   = "Tenant"
)

// ErrorResponse - структурированное тело ошибки бэкенда.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
