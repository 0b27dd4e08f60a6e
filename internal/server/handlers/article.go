package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/lostlibrary/internal/models"
	"github.com/iudanet/lostlibrary/internal/server/storage"
	"github.com/iudanet/lostlibrary/internal/validation"
	"github.com/iudanet/lostlibrary/pkg/api"
)

// MaxFeedLimit ограничивает размер одной страницы ленты
const MaxFeedLimit = api.MaxArticlesPerRequest

// ArticleHandler обрабатывает запросы к статьям и лайкам
type ArticleHandler struct {
	responder
	articles storage.ArticleStorage
	likes    storage.LikeStorage
	profiles storage.ProfileStorage
	now      func() time.Time
}

// NewArticleHandler создает новый handler для статей
func NewArticleHandler(
	logger *slog.Logger,
	articles storage.ArticleStorage,
	likes storage.LikeStorage,
	profiles storage.ProfileStorage,
) *ArticleHandler {
	return &ArticleHandler{
		responder: responder{logger: defaultLogger(logger).With(slog.String("component", "article_handler"))},
		articles:  articles,
		likes:     likes,
		profiles:  profiles,
		now:       time.Now,
	}
}

// List обрабатывает GET /api/v1/articles?category=&limit=&ids=a,b
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := models.ArticleFilter{Category: q.Get("category")}
	if filter.Category != "" {
		if err := validation.ValidateCategory(filter.Category); err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxFeedLimit {
			h.sendError(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	if q.Has("ids") {
		filter.IDs = splitIDs(q.Get("ids"))
		if len(filter.IDs) > MaxFeedLimit {
			h.sendError(w, "too many ids", http.StatusBadRequest)
			return
		}
	}

	articles, err := h.articles.ListPublishedArticles(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list articles", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.ArticlesResponse{Articles: make([]api.Article, 0, len(articles))}
	authors := map[string]*api.Profile{}
	for _, article := range articles {
		item := h.toAPIArticle(ctx, article, authors)
		// Лента не отдает полный текст
		item.Content = ""
		resp.Articles = append(resp.Articles, item)
	}

	h.sendJSON(w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/v1/articles/{slug}
// Каждый успешный просмотр увеличивает view_count.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, err := h.articles.GetPublishedArticle(ctx, r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, storage.ErrArticleNotFound) {
			h.sendError(w, "article not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get article", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.articles.IncrementViewCount(ctx, article.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to increment view count",
			slog.String("article_id", article.ID), slog.Any("error", err))
	} else {
		article.ViewCount++
	}

	h.sendJSON(w, h.toAPIArticle(ctx, article, map[string]*api.Profile{}), http.StatusOK)
}

// Create обрабатывает POST /api/v1/articles
// Требует AuthMiddleware.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateArticleRequest
	if err := h.decode(w, r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateArticle(req); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()
	article := &models.Article{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Slug:      req.Slug,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		CreatedAt: now,
	}
	if req.Publish {
		article.PublishedAt = &now
	}

	if err := h.articles.CreateArticle(ctx, article); err != nil {
		if errors.Is(err, storage.ErrSlugTaken) {
			h.sendError(w, "slug already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create article", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "article created",
		slog.String("article_id", article.ID),
		slog.Bool("published", article.IsPublished()))

	h.sendJSON(w, h.toAPIArticle(ctx, article, map[string]*api.Profile{}), http.StatusCreated)
}

// LikeStatus обрабатывает GET /api/v1/articles/{id}/like
// Работает и для анонимного читателя.
func (h *ArticleHandler) LikeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articleID := r.PathValue("id")
	userID, _ := GetUserID(ctx)

	liked, count, err := h.likes.LikeStatus(ctx, articleID, userID)
	if err != nil {
		h.sendLikeError(w, r, err)
		return
	}

	h.sendJSON(w, api.LikeStatus{ArticleID: articleID, Liked: liked, Count: count}, http.StatusOK)
}

// Like обрабатывает POST /api/v1/articles/{id}/like
func (h *ArticleHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, true)
}

// Unlike обрабатывает DELETE /api/v1/articles/{id}/like
func (h *ArticleHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, false)
}

func (h *ArticleHandler) changeLike(w http.ResponseWriter, r *http.Request, like bool) {
	ctx := r.Context()
	articleID := r.PathValue("id")

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	change := h.likes.Unlike
	if like {
		change = h.likes.Like
	}

	count, err := change(ctx, articleID, userID)
	if err != nil {
		h.sendLikeError(w, r, err)
		return
	}

	h.sendJSON(w, api.LikeStatus{ArticleID: articleID, Liked: like, Count: count}, http.StatusOK)
}

func (h *ArticleHandler) sendLikeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrArticleNotFound) {
		h.sendError(w, "article not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(r.Context(), "failed to process like", slog.Any("error", err))
	h.sendError(w, "internal server error", http.StatusInternalServerError)
}

// toAPIArticle собирает ответ вместе с профилем автора; authors кеширует профили в пределах запроса
func (h *ArticleHandler) toAPIArticle(ctx context.Context, a *models.Article, authors map[string]*api.Profile) api.Article {
	out := api.Article{
		ID:        a.ID,
		UserID:    a.UserID,
		Title:     a.Title,
		Slug:      a.Slug,
		Excerpt:   a.Excerpt,
		Content:   a.Content,
		Category:  a.Category,
		ImageURL:  a.ImageURL,
		ViewCount: a.ViewCount,
		LikeCount: a.LikeCount,
	}
	if a.PublishedAt != nil {
		out.PublishedAt = *a.PublishedAt
	}

	author, cached := authors[a.UserID]
	if !cached {
		profile, err := h.profiles.GetProfile(ctx, a.UserID)
		switch {
		case err == nil:
			p := toAPIProfile(profile)
			author = &p
		case !errors.Is(err, storage.ErrProfileNotFound):
			h.logger.WarnContext(ctx, "failed to load author profile",
				slog.String("user_id", a.UserID), slog.Any("error", err))
		}
		authors[a.UserID] = author
	}
	out.Author = author

	return out
}

// splitIDs разбирает список id через запятую, пропуская пустые элементы
func splitIDs(raw string) []string {
	ids := []string{}
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
