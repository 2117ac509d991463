package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db/dbtest"
)

type harness struct {
	t      *testing.T
	router http.Handler
	conn   *sqlx.DB
	issuer *auth.Issuer
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Version: "1.2.3",
		Mode:    config.ModeDev,
		Server:  config.ServerConfig{Swagger: true},
		Auth:    config.AuthConfig{JWTSecret: "router-test", TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
	}
	if mutate != nil {
		mutate(cfg)
	}
	conn := dbtest.Open(t)
	return &harness{
		t:      t,
		router: NewRouter(cfg, conn),
		conn:   conn,
		issuer: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}
}

func (h *harness) token(username string, admin bool) string {
	h.t.Helper()
	id := dbtest.SeedUser(h.t, h.conn, username, admin)
	tok, _, err := h.issuer.Issue(auth.Identity{UserID: id, Username: username, IsAdmin: admin})
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, target, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func bookBody(isbn string, copies int) map[string]any {
	return map[string]any{
		"author":               "N. K. Jemisin",
		"title":                "The Fifth Season",
		"publication":          "Orbit",
		"copyright_year":       "2015",
		"physical_description": "512 p.",
		"isbn":                 isbn,
		"subject":              "Fantasy",
		"call_number":          "PS3610.E46 F54",
		"accession_number":     "B-2015-01",
		"location":             "Main Stacks",
		"total_copies":         copies,
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = h.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Contains(t, body, "uptime")
}

func TestRegisterLoginMe(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"surname": "Butler", "firstname": "Octavia", "username": "obutler",
		"password": "Kindred#1979", "displayName": "Octavia E. Butler",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "INVALID_ARGUMENT", body["code"])
	assert.NotEmpty(t, body["errors"])

	w = h.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "obutler", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "obutler", "password": "Kindred#1979"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[auth.LoginResponse](t, w)
	require.NotEmpty(t, login.Token)

	w = h.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[auth.Identity](t, w)
	assert.Equal(t, "obutler", me.Username)
	assert.False(t, me.IsAdmin)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/books", "garbage", nil).Code)
}

func TestBooksAndBorrowingFlow(t *testing.T) {
	h := newHarness(t, nil)
	admin := h.token("librarian", true)
	reader := h.token("reader", false)

	// catalog mutations are admin only
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/books", "", bookBody("9780316229296", 1)).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/books", reader, bookBody("9780316229296", 1)).Code)

	w := h.do(http.MethodPost, "/api/books", admin, bookBody("9780316229296", 1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Book struct {
			ID              int64 `json:"id"`
			AvailableCopies int   `json:"available_copies"`
		} `json:"book"`
	}](t, w)
	bookID := created.Book.ID
	assert.Equal(t, 1, created.Book.AvailableCopies)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodPost, "/api/books", admin, bookBody("9780316229296", 1)).Code)

	w = h.do(http.MethodGet, "/api/books?q=fifth", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	// guests browse but cannot borrow
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/borrowings/borrow", "", map[string]any{"book_id": bookID}).Code)

	w = h.do(http.MethodPost, "/api/borrowings/borrow", reader, map[string]any{"book_id": bookID, "notes": "for book club"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[struct {
		Borrowing struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"borrowing"`
	}](t, w)
	assert.Equal(t, "borrowed", loan.Borrowing.Status)
	assert.Empty(t, w.Header().Get("Location"))

	w = h.do(http.MethodPost, "/api/borrowings/borrow", admin, map[string]any{"book_id": bookID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNAVAILABLE", decode[map[string]any](t, w)["code"])

	target := "/api/books/" + jsonNumber(bookID)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodDelete, target, admin, nil).Code)

	w = h.do(http.MethodGet, "/api/borrowings/user", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/borrowings/all", reader, nil).Code)
	w = h.do(http.MethodGet, "/api/borrowings/all", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]map[string]any](t, w)
	require.Len(t, all, 1)
	assert.Equal(t, "reader", all[0]["username"])

	w = h.do(http.MethodPut, "/api/borrowings/return/"+jsonNumber(loan.Borrowing.ID), reader, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPut, "/api/borrowings/return/"+jsonNumber(loan.Borrowing.ID), reader, nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, "/api/borrowings/return/abc", reader, nil).Code)

	w = h.do(http.MethodGet, "/api/books/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "The Fifth Season")
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/books/export", reader, nil).Code)

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, target, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, target, "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/zero", "", nil).Code)
}

func TestBorrowings_GuestRejectedBeforeInput(t *testing.T) {
	h := newHarness(t, nil)
	reader := h.token("reader", false)

	// no body, bad path id: a guest still gets 403
	w := h.do(http.MethodPost, "/api/borrowings/borrow", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	w = h.do(http.MethodPut, "/api/borrowings/return/abc", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// a member with an empty body gets the field list
	w = h.do(http.MethodPost, "/api/borrowings/borrow", reader, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Code   string `json:"code"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}](t, w)
	assert.Equal(t, "INVALID_ARGUMENT", body.Code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "book_id", body.Errors[0].Field)

	req := httptest.NewRequest(http.MethodPost, "/api/borrowings/borrow", strings.NewReader(`{"book_id":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+reader)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json", decode[map[string]any](t, rec)["message"])
}

func TestAPIRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Server.RateLimit = config.RateLimit{Enabled: true, Requests: 100, Window: 15 * time.Minute, IdleTTL: 15 * time.Minute}
	})
	for i := 0; i < 100; i++ {
		require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/health", "", nil).Code, "request %d", i+1)
	}

	w := h.do(http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// /healthz sits outside /api and is not counted
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "", nil).Code)
}

func TestSwagger(t *testing.T) {
	h := newHarness(t, nil)
	w := h.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/borrowings/borrow"`)

	off := newHarness(t, func(c *config.Config) { c.Server.Swagger = false })
	assert.Equal(t, http.StatusNotFound, off.do(http.MethodGet, "/swagger/doc.json", "", nil).Code)
}

func TestNoRoute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>spa</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	h := newHarness(t, func(c *config.Config) { c.Server.StaticDir = dir })

	w := h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[map[string]any](t, w)["code"])

	w = h.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spa")

	w = h.do(http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))

	w = h.do(http.MethodGet, "/borrowings/mine", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spa")

	bare := newHarness(t, nil)
	assert.Equal(t, http.StatusNotFound, bare.do(http.MethodGet, "/", "", nil).Code)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
