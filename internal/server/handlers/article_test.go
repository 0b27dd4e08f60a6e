package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/lostlibrary/pkg/api"
)

func (e *testEnv) createArticle(t *testing.T, author api.SessionResponse, req api.CreateArticleRequest) api.Article {
	t.Helper()

	w := httptest.NewRecorder()
	e.articles.Create(w, asUser(jsonRequest(http.MethodPost, "/api/v1/articles", req), author))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var article api.Article
	decodeBody(t, w, &article)
	return article
}

func likeRequest(method, articleID string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/articles/"+articleID+"/like", nil)
	req.SetPathValue("id", articleID)
	return req
}

func TestArticleHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	author := env.signUp(t, "herodotus@example.com", "histories")

	article := env.createArticle(t, author, api.CreateArticleRequest{
		Title:    "The Fall of Constantinople",
		Slug:     "fall-of-constantinople",
		Content:  "1453.",
		Category: "medieval-period",
		Publish:  true,
	})
	assert.Equal(t, author.User.ID, article.UserID)
	assert.False(t, article.PublishedAt.IsZero())

	get := func(slug string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/articles/"+slug, nil)
		req.SetPathValue("slug", slug)
		w := httptest.NewRecorder()
		env.articles.Get(w, req)
		return w
	}

	w := get("fall-of-constantinople")
	require.Equal(t, http.StatusOK, w.Code)
	var got api.Article
	decodeBody(t, w, &got)
	assert.Equal(t, "1453.", got.Content)
	assert.Equal(t, int64(1), got.ViewCount)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.User.ID, got.Author.ID)

	assert.Equal(t, http.StatusNotFound, get("missing").Code)

	// Черновик не виден читателям
	env.createArticle(t, author, api.CreateArticleRequest{
		Title:    "Draft",
		Slug:     "draft",
		Content:  "todo",
		Category: "renaissance",
	})
	assert.Equal(t, http.StatusNotFound, get("draft").Code)
}

func TestArticleHandler_Create_Rejects(t *testing.T) {
	env := newTestEnv(t)
	author := env.signUp(t, "writer@example.com", "password123")
	env.createArticle(t, author, api.CreateArticleRequest{Title: "A", Slug: "taken", Content: "x", Category: "renaissance", Publish: true})

	tests := []struct {
		name     string
		req      api.CreateArticleRequest
		wantCode int
	}{
		{name: "duplicate slug", req: api.CreateArticleRequest{Title: "B", Slug: "taken", Content: "x", Category: "renaissance"}, wantCode: http.StatusConflict},
		{name: "bad slug", req: api.CreateArticleRequest{Title: "B", Slug: "Bad Slug", Content: "x", Category: "renaissance"}, wantCode: http.StatusBadRequest},
		{name: "unknown category", req: api.CreateArticleRequest{Title: "B", Slug: "b", Content: "x", Category: "future"}, wantCode: http.StatusBadRequest},
		{name: "empty title", req: api.CreateArticleRequest{Slug: "c", Content: "x", Category: "renaissance"}, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.articles.Create(w, asUser(jsonRequest(http.MethodPost, "/api/v1/articles", tt.req), author))
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}

	w := httptest.NewRecorder()
	env.articles.Create(w, jsonRequest(http.MethodPost, "/api/v1/articles", api.CreateArticleRequest{}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestArticleHandler_List(t *testing.T) {
	env := newTestEnv(t)
	author := env.signUp(t, "list@example.com", "password123")

	first := env.createArticle(t, author, api.CreateArticleRequest{Title: "One", Slug: "one", Content: "long text", Category: "renaissance", Publish: true})
	second := env.createArticle(t, author, api.CreateArticleRequest{Title: "Two", Slug: "two", Content: "long text", Category: "world-wars", Publish: true})

	list := func(query string) (*httptest.ResponseRecorder, []api.Article) {
		w := httptest.NewRecorder()
		env.articles.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/articles"+query, nil))
		if w.Code != http.StatusOK {
			return w, nil
		}
		var resp api.ArticlesResponse
		decodeBody(t, w, &resp)
		return w, resp.Articles
	}

	_, all := list("")
	assert.Len(t, all, 2)
	for _, a := range all {
		assert.Empty(t, a.Content, "feed must not carry article bodies")
	}

	_, byCategory := list("?category=world-wars")
	require.Len(t, byCategory, 1)
	assert.Equal(t, second.ID, byCategory[0].ID)

	_, byIDs := list("?ids=" + first.ID + ",missing")
	require.Len(t, byIDs, 1)
	assert.Equal(t, first.ID, byIDs[0].ID)

	_, none := list("?ids=")
	assert.Empty(t, none)

	w, _ := list("?category=future")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = list("?limit=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = list("?limit=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArticleHandler_Likes(t *testing.T) {
	env := newTestEnv(t)
	author := env.signUp(t, "author@example.com", "password123")
	reader := env.signUp(t, "reader@example.com", "password123")
	article := env.createArticle(t, author, api.CreateArticleRequest{Title: "T", Slug: "t", Content: "x", Category: "renaissance", Publish: true})

	do := func(handler http.HandlerFunc, req *http.Request) api.LikeStatus {
		w := httptest.NewRecorder()
		handler(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var status api.LikeStatus
		decodeBody(t, w, &status)
		return status
	}

	status := do(env.articles.LikeStatus, likeRequest(http.MethodGet, article.ID))
	assert.False(t, status.Liked)
	assert.Zero(t, status.Count)

	status = do(env.articles.Like, asUser(likeRequest(http.MethodPost, article.ID), reader))
	assert.True(t, status.Liked)
	assert.Equal(t, int64(1), status.Count)

	status = do(env.articles.Like, asUser(likeRequest(http.MethodPost, article.ID), reader))
	assert.Equal(t, int64(1), status.Count)

	status = do(env.articles.LikeStatus, asUser(likeRequest(http.MethodGet, article.ID), reader))
	assert.True(t, status.Liked)

	status = do(env.articles.Unlike, asUser(likeRequest(http.MethodDelete, article.ID), reader))
	assert.False(t, status.Liked)
	assert.Zero(t, status.Count)

	w := httptest.NewRecorder()
	env.articles.Like(w, likeRequest(http.MethodPost, article.ID))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	env.articles.Like(w, asUser(likeRequest(http.MethodPost, "missing"), reader))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
