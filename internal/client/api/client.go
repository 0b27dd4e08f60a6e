package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/lostlibrary/pkg/api"
)

// DefaultTimeout ограничивает один запрос к серверу, если таймаут не задан
const DefaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент.
// timeout <= 0 означает DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SignUp регистрирует нового пользователя
func (c *Client) SignUp(ctx context.Context, email, password string) (*api.SignUpResponse, error) {
	var resp api.SignUpResponse
	req := api.SignUpRequest{Email: email, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/signup", "", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// SignInWithPassword выполняет вход по email и паролю
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*api.SessionResponse, error) {
	var resp api.SessionResponse
	req := api.PasswordGrantRequest{Email: email, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/token", "", req, &resp); err != nil {
		return nil, fmt.Errorf("sign in request failed: %w", err)
	}
	return &resp, nil
}

// ExchangeRefreshToken обменивает refresh token на новую пару токенов.
// Старый refresh token после успешного обмена недействителен.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*api.SessionResponse, error) {
	var resp api.SessionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// SignOut отзывает на сервере одну сессию, заданную refresh token
func (c *Client) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	req := api.LogoutRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, req, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// SignOutEverywhere отзывает все сессии владельца access token
func (c *Client) SignOutEverywhere(ctx context.Context, accessToken string) error {
	req := api.LogoutRequest{Scope: api.LogoutScopeGlobal}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, req, nil); err != nil {
		return fmt.Errorf("global logout request failed: %w", err)
	}
	return nil
}

// GetUser возвращает пользователя, которому принадлежит access token
func (c *Client) GetUser(ctx context.Context, accessToken string) (*api.User, error) {
	var resp api.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/user", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	return &resp, nil
}

// GetProfile возвращает публичный профиль пользователя
func (c *Client) GetProfile(ctx context.Context, userID string) (*api.Profile, error) {
	var resp api.Profile
	path := "/api/v1/profiles/" + url.PathEscape(userID)
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get profile request failed: %w", err)
	}
	return &resp, nil
}

// UpdateProfile сохраняет профиль текущего пользователя
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, req api.UpdateProfileRequest) (*api.Profile, error) {
	var resp api.Profile
	if err := c.doRequest(ctx, http.MethodPut, "/api/v1/profiles/me", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("update profile request failed: %w", err)
	}
	return &resp, nil
}

// Feed возвращает опубликованные статьи, новые первыми.
// Пустая category означает все категории, limit <= 0 означает лимит сервера.
func (c *Client) Feed(ctx context.Context, category string, limit int) ([]api.Article, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	articles, err := c.listArticles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	return articles, nil
}

// GetArticlesByIDs возвращает опубликованные статьи из списка ids одним запросом.
// Неизвестные и неопубликованные id в ответ не попадают.
func (c *Client) GetArticlesByIDs(ctx context.Context, ids []string) ([]api.Article, error) {
	if len(ids) == 0 {
		return []api.Article{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	articles, err := c.listArticles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("articles lookup failed: %w", err)
	}
	return articles, nil
}

func (c *Client) listArticles(ctx context.Context, q url.Values) ([]api.Article, error) {
	path := "/api/v1/articles"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp api.ArticlesResponse
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return []api.Article{}, nil
	}
	return resp.Articles, nil
}

// GetArticle возвращает опубликованную статью по slug
func (c *Client) GetArticle(ctx context.Context, slug string) (*api.Article, error) {
	var resp api.Article
	path := "/api/v1/articles/" + url.PathEscape(slug)
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get article request failed: %w", err)
	}
	return &resp, nil
}

// CreateArticle создает статью от имени текущего пользователя
func (c *Client) CreateArticle(ctx context.Context, accessToken string, req api.CreateArticleRequest) (*api.Article, error) {
	var resp api.Article
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/articles", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create article request failed: %w", err)
	}
	return &resp, nil
}

// LikeStatus возвращает число лайков статьи.
// accessToken может быть пустым, тогда Liked всегда false.
func (c *Client) LikeStatus(ctx context.Context, accessToken, articleID string) (*api.LikeStatus, error) {
	return c.like(ctx, http.MethodGet, accessToken, articleID)
}

// Like ставит лайк статье
func (c *Client) Like(ctx context.Context, accessToken, articleID string) (*api.LikeStatus, error) {
	return c.like(ctx, http.MethodPost, accessToken, articleID)
}

// Unlike снимает лайк со статьи
func (c *Client) Unlike(ctx context.Context, accessToken, articleID string) (*api.LikeStatus, error) {
	return c.like(ctx, http.MethodDelete, accessToken, articleID)
}

func (c *Client) like(ctx context.Context, method, accessToken, articleID string) (*api.LikeStatus, error) {
	var resp api.LikeStatus
	path := "/api/v1/articles/" + url.PathEscape(articleID) + "/like"
	if err := c.doRequest(ctx, method, path, accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("like request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос.
// Непустой token отправляется в заголовке Authorization: Bearer.
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Отмена вызывающим не считается недоступностью сервера
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("request aborted: %w", ctxErr)
		}
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", ErrBackendUnavailable, err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Error
			if errResp.Message != "" {
				apiErr.Message = errResp.Message
			}
		}
		return apiErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
