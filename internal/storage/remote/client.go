// Package remote - клиент REST-бэкенда эко-энзима.
// Реализует project.Repository и economy.Repository поверх HTTP API:
// бэкенд остаётся единственным источником истины и сам проверяет записи.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"serotonyl.ru/eco-bot/internal/common"
)

// DefaultTimeout - таймаут запроса, если у контекста нет дедлайна.
const DefaultTimeout = 10 * time.Second

// errConflict - бэкенд ответил 409.
var errConflict = errors.New("remote: conflict")

// Client - HTTP-клиент бэкенда.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fasthttp.Client

	mu sync.Mutex
	me *Identity // Кэш /auth/me: токен клиента не меняется
}

// Option настраивает клиент.
type Option func(*Client)

// WithTimeout задаёт таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New создаёт клиент. token передаётся как Bearer; пустой токен допустим для /health-подобных вызовов.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: DefaultTimeout,
		http: &fasthttp.Client{
			Name:                "ecoctl",
			MaxIdleConnDuration: time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do выполняет запрос. body кодируется в JSON, ответ декодируется в out (если не nil).
// Возвращает код ответа.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("кодирование запроса %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(raw)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"method": method,
			"path":   path,
		}).Warn("Запрос к бэкенду не выполнен")
		return 0, fmt.Errorf("%w: %s %s: %v", common.ErrBackend, method, path, err)
	}

	code := resp.StatusCode()
	switch {
	case code == fasthttp.StatusUnauthorized:
		return code, common.ErrUnauthorized
	case code == fasthttp.StatusNotFound:
		return code, common.ErrNotFound
	case code == fasthttp.StatusConflict:
		return code, errConflict
	case code < 200 || code >= 300:
		return code, fmt.Errorf("%w: %s %s: статус %d: %s", common.ErrBackend, method, path, code, snippet(resp.Body()))
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return code, fmt.Errorf("%w: разбор ответа %s %s: %v", common.ErrBackend, method, path, err)
		}
	}
	return code, nil
}

// snippet обрезает тело ответа для сообщения об ошибке.
func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// Identity - текущий пользователь бэкенда.
type Identity struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	TotalPoints int64  `json:"total_points"`
}

// identity возвращает пользователя токена, запрашивая /auth/me один раз.
func (c *Client) identity(ctx context.Context) (*Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.me != nil {
		return c.me, nil
	}
	me, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	c.me = me
	return me, nil
}

// Me возвращает пользователя, которому принадлежит токен.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var env struct {
		Data *Identity `json:"data"`
	}
	if _, err := c.do(ctx, fasthttp.MethodGet, "/auth/me", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: пустой ответ /auth/me", common.ErrBackend)
	}
	return env.Data, nil
}
