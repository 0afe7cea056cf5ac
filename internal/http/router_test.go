package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/authors"
	"librarium/internal/database/books"
	"librarium/internal/database/borrows"
)

type testServer struct {
	router *gin.Engine
	auth   *auth.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "api.db")
	db, err := database.New(config.Database{
		Driver: config.DriverSQLite,
		Path:   dbPath,
	})
	require.NoError(t, err)

	authCfg := config.Auth{
		JWTSecret:        "router-test-secret",
		TokenExpiry:      time.Hour,
		BcryptCost:       4,
		LoginMaxAttempts: 100,
		LoginWindow:      time.Minute,
	}

	authService := auth.NewService(db.DB, authCfg)
	t.Cleanup(func() {
		authService.Close()
		db.Close()
	})

	router := NewRouter(RouterConfig{
		Database:       db,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(authCfg.JWTSecret),
		Authors:        authors.NewRepository(db.DB),
		Books:          books.NewRepository(db.DB),
		Borrows:        borrows.NewRepository(db.DB),
		Version:        "test",
	})

	return &testServer{router: router, auth: authService}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

func (s *testServer) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"full_name": name,
		"email":     email,
		"password":  "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return s.login(t, email)
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	_, err := s.auth.CreateAdmin("Head Librarian", "admin@example.com", "password123")
	require.NoError(t, err)
	return s.login(t, "admin@example.com")
}

func (s *testServer) createBook(t *testing.T, adminToken, title string, copies int) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/admin/authors", adminToken, gin.H{"name": "Author of " + title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var author struct {
		ID uint `json:"id"`
	}
	decode(t, w, &author)

	w = s.do(t, http.MethodPost, "/api/admin/books", adminToken, gin.H{
		"title":     title,
		"author_id": author.ID,
		"copies":    copies,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book struct {
		ID uint `json:"id"`
	}
	decode(t, w, &book)
	return book.ID
}

func TestBorrowLifecycle(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.adminToken(t)
	alice := s.registerAndLogin(t, "Alice", "alice@example.com")
	bob := s.registerAndLogin(t, "Bob", "bob@example.com")
	bookID := s.createBook(t, adminToken, "Contended Classic", 1)

	// Alice takes the only copy.
	w := s.do(t, http.MethodPost, "/api/borrow", alice, gin.H{"book_id": bookID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record struct {
		ID uint `json:"id"`
	}
	decode(t, w, &record)

	// Bob is turned away.
	w = s.do(t, http.MethodPost, "/api/borrow", bob, gin.H{"book_id": bookID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "book not available")

	// The catalog shows zero availability.
	w = s.do(t, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog []struct {
		CopiesAvailable int `json:"copies_available"`
	}
	decode(t, w, &catalog)
	require.Len(t, catalog, 1)
	assert.Equal(t, 0, catalog[0].CopiesAvailable)

	// Alice returns it; Bob can now borrow.
	w = s.do(t, http.MethodPost, "/api/return/"+itoa(record.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Book returned successfully")

	w = s.do(t, http.MethodPost, "/api/borrow", bob, gin.H{"book_id": bookID})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Alice's history holds her closed loan.
	w = s.do(t, http.MethodGet, "/api/my-books", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []struct {
		ReturnDate *string `json:"return_date"`
		Book       struct {
			Title string `json:"title"`
		} `json:"book"`
	}
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.NotNil(t, mine[0].ReturnDate)
	assert.Equal(t, "Contended Classic", mine[0].Book.Title)

	// The admin ledger view sees both loans.
	w = s.do(t, http.MethodGet, "/api/admin/borrow-records", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []json.RawMessage
	decode(t, w, &all)
	assert.Len(t, all, 2)
}

func TestReturnSomeoneElsesRecord(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.adminToken(t)
	alice := s.registerAndLogin(t, "Alice", "alice@example.com")
	bob := s.registerAndLogin(t, "Bob", "bob@example.com")
	bookID := s.createBook(t, adminToken, "Private Loan", 1)

	w := s.do(t, http.MethodPost, "/api/borrow", alice, gin.H{"book_id": bookID})
	require.Equal(t, http.StatusCreated, w.Code)
	var record struct {
		ID uint `json:"id"`
	}
	decode(t, w, &record)

	// Bob probing Alice's record gets the same 404 as a nonexistent one.
	w = s.do(t, http.MethodPost, "/api/return/"+itoa(record.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/return/99999", bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthBoundaries(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.adminToken(t)
	member := s.registerAndLogin(t, "Alice", "alice@example.com")

	t.Run("borrowing requires a token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/borrow", "", gin.H{"book_id": 1})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("members can not reach admin routes", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/borrow-records", member, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins can", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/admin/borrow-records", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminCatalogManagement(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.adminToken(t)
	member := s.registerAndLogin(t, "Alice", "alice@example.com")
	bookID := s.createBook(t, adminToken, "Editable", 2)

	t.Run("update recomputes availability", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/borrow", member, gin.H{"book_id": bookID})
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do(t, http.MethodGet, "/api/books", "", nil)
		var before []struct {
			AuthorID uint `json:"author_id"`
		}
		decode(t, w, &before)
		require.Len(t, before, 1)

		w = s.do(t, http.MethodPut, "/api/admin/books/"+itoa(bookID), adminToken, gin.H{
			"title":     "Editable (2nd ed.)",
			"author_id": before[0].AuthorID,
			"copies":    5,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated struct {
			CopiesTotal     int `json:"copies_total"`
			CopiesAvailable int `json:"copies_available"`
		}
		decode(t, w, &updated)
		assert.Equal(t, 5, updated.CopiesTotal)
		assert.Equal(t, 4, updated.CopiesAvailable)
	})

	t.Run("borrowed book can not be deleted", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/admin/books/"+itoa(bookID), adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cannot delete borrowed book")
	})

	t.Run("idle book deletes cleanly", func(t *testing.T) {
		idleID := s.createBook(t, adminToken, "Idle", 1)
		w := s.do(t, http.MethodDelete, "/api/admin/books/"+itoa(idleID), adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Book deleted successfully")

		w = s.do(t, http.MethodDelete, "/api/admin/books/"+itoa(idleID), adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("garbage id is a 400", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/api/admin/books/abc", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogSearch(t *testing.T) {
	s := setupTestServer(t)
	adminToken := s.adminToken(t)
	s.createBook(t, adminToken, "Dune", 1)
	s.createBook(t, adminToken, "Dune Messiah", 1)
	s.createBook(t, adminToken, "Emma", 1)

	w := s.do(t, http.MethodGet, "/api/books?search=dune", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []json.RawMessage
	decode(t, w, &results)
	assert.Len(t, results, 2)

	w = s.do(t, http.MethodGet, "/api/books?author=notanumber", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := setupTestServer(t)
	s.registerAndLogin(t, "Alice", "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"full_name": "Alice Again",
		"email":     "alice@example.com",
		"password":  "password456",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := setupTestServer(t)
	s.registerAndLogin(t, "Alice", "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestHealthAndPing(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database": "ok"`)

	w = s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
