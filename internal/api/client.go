// Package api - HTTP клиент REST бэкенда маркетплейса и сервиса подписи платежей.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maynagashev/roomrent/models"
)

const (
	defaultTimeout = 15 * time.Second
	// Ограничение на чтение тела ошибки, чтобы не тянуть в память HTML страницы.
	maxErrorBodySize = 64 << 10
)

// Client определяет интерфейс для взаимодействия с бэкендом маркетплейса.
type Client interface {
	// Login аутентифицирует пользователя и возвращает сессию.
	Login(ctx context.Context, username, password string) (*models.Session, error)
	// Register регистрирует пользователя; бэкенд сразу возвращает сессию.
	Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error)
	// Verify отправляет форму верификации (с вложениями) от имени пользователя.
	Verify(ctx context.Context, token string, form *MultipartForm) (json.RawMessage, error)
	// HandleRent сохраняет бронирование комнаты.
	HandleRent(ctx context.Context, token string, booking models.BookingRequest) error
	// GetRoom получает карточку комнаты.
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	// SignPayment запрашивает у сервиса подписи подписанные поля платежа.
	SignPayment(ctx context.Context, token string, req models.SignRequest) (*models.SignResponse, error)
}

// httpClient реализует интерфейс Client по HTTP.
type httpClient struct {
	baseURL    string       // Базовый URL бэкенда, например "http://localhost:8000"
	signerURL  string       // Базовый URL сервиса подписи (может быть пустым)
	httpClient *http.Client // HTTP клиент для выполнения запросов
}

// Option настраивает httpClient.
type Option func(*httpClient)

// WithSignerURL задает адрес сервиса подписи платежей.
func WithSignerURL(signerURL string) Option {
	return func(c *httpClient) {
		c.signerURL = signerURL
	}
}

// WithHTTPClient подменяет HTTP клиент (таймауты, транспорт в тестах).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.httpClient = hc
	}
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login отправляет учетные данные на /user/login/.
func (c *httpClient) Login(ctx context.Context, username, password string) (*models.Session, error) {
	const op = "вход"
	body := models.LoginRequest{Username: username, Password: password}

	var sess models.Session
	if err := c.postJSON(ctx, op, c.baseURL, "/user/login/", body, &sess); err != nil {
		return nil, err
	}
	if sess.Access == "" {
		return nil, &TransportError{Op: op, Err: errors.New("сервер вернул пустой токен")}
	}
	return &sess, nil
}

// Register отправляет анкету регистрации на /user/register/.
func (c *httpClient) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	const op = "регистрация"

	var sess models.Session
	if err := c.postJSON(ctx, op, c.baseURL, "/user/register/", req, &sess); err != nil {
		return nil, err
	}
	if sess.Access == "" {
		return nil, &TransportError{Op: op, Err: errors.New("сервер вернул пустой токен")}
	}
	return &sess, nil
}

// Verify отправляет multipart форму на /user/verify/.
func (c *httpClient) Verify(ctx context.Context, token string, form *MultipartForm) (json.RawMessage, error) {
	const op = "верификация"

	body, contentType, err := form.encode()
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req, err := c.newRequest(ctx, op, http.MethodPost, c.baseURL, "/user/verify/", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	setBearer(req, token)

	var result json.RawMessage
	if err = c.do(req, op, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// HandleRent отправляет бронирование на /handle-rent/.
func (c *httpClient) HandleRent(ctx context.Context, token string, booking models.BookingRequest) error {
	const op = "бронирование"

	form := NewMultipartForm().
		Add("rent_id", strconv.FormatInt(booking.RentID, 10)).
		Add("rent_from", booking.RentFrom).
		Add("rent_to", booking.RentTo).
		Add("rent", "true")
	body, contentType, err := form.encode()
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req, err := c.newRequest(ctx, op, http.MethodPost, c.baseURL, "/handle-rent/", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	setBearer(req, token)

	return c.do(req, op, nil)
}

// GetRoom получает комнату с /rooms/{id}/.
func (c *httpClient) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	const op = "получение комнаты"

	req, err := c.newRequest(ctx, op, http.MethodGet, c.baseURL, "/rooms/"+strconv.FormatInt(id, 10)+"/", nil)
	if err != nil {
		return nil, err
	}
	var room models.Room
	if err = c.do(req, op, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SignPayment отправляет поля платежа сервису подписи.
func (c *httpClient) SignPayment(
	ctx context.Context,
	token string,
	signReq models.SignRequest,
) (*models.SignResponse, error) {
	const op = "подпись платежа"
	if c.signerURL == "" {
		return nil, ErrSignerNotConfigured
	}

	jsonData, err := json.Marshal(signReq)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования данных для подписи: %w", err)
	}
	req, err := c.newRequest(ctx, op, http.MethodPost, c.signerURL, "/api/payments/sign", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	setBearer(req, token)

	var resp models.SignResponse
	if err = c.do(req, op, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// postJSON кодирует in в JSON, выполняет POST и декодирует ответ в out.
func (c *httpClient) postJSON(ctx context.Context, op, base, path string, in, out any) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ошибка кодирования данных (%s): %w", op, err)
	}
	req, err := c.newRequest(ctx, op, http.MethodPost, base, path, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// newRequest формирует URL эндпоинта и создает запрос.
func (c *httpClient) newRequest(ctx context.Context, op, method, base, path string, body io.Reader) (*http.Request, error) {
	endpoint, err := url.JoinPath(base, path)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("ошибка формирования URL: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("ошибка создания запроса: %w", err)}
	}
	return req, nil
}

// do выполняет запрос и приводит любой исход к nil, *TransportError или *ValidationError.
func (c *httpClient) do(req *http.Request, op string, out any) error {
	slog.Debug("Запрос к API", "op", op, "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		data, errRead := io.ReadAll(resp.Body)
		if errRead != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("ошибка чтения ответа: %w", errRead)}
		}
		*raw = data
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("ошибка декодирования ответа: %w", err)}
	}
	return nil
}

// decodeError читает тело ответа с ошибкой и ищет в нем поле detail.
func decodeError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var errResp models.ErrorResponse
	if json.Unmarshal(data, &errResp) == nil && errResp.Detail != "" {
		slog.Debug("Бэкенд вернул ошибку", "op", op, "status", resp.StatusCode, "detail", errResp.Detail)
		return &ValidationError{Op: op, Status: resp.StatusCode, Detail: errResp.Detail}
	}
	return &TransportError{
		Op:     op,
		Status: resp.StatusCode,
		Err:    fmt.Errorf("статус %d", resp.StatusCode),
	}
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
