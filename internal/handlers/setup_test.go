package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"contactbook/internal/app"
	"contactbook/internal/config"
	"contactbook/internal/database"
	"contactbook/internal/models"
	"contactbook/internal/repositories"
	"contactbook/internal/services"
)

const (
	testPassword  = "password123"
	sessionCookie = "test_session"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	users    *repositories.GORMUserRepository
	profiles *repositories.GORMProfileRepository
	contacts *repositories.GORMContactRepository
}

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		JWTSecret:       "test_jwt_secret",
		JWTTTL:          time.Hour,
		BcryptCost:      bcrypt.MinCost,
		SessionCookie:   sessionCookie,
		SessionTTL:      time.Hour,
		PageSize:        10,
		APIOwnerScoping: true,
	}
}

// setupApp sets up the full application on an in-memory SQLite database.
func setupApp(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &testEnv{
		app:      app.New(app.Deps{Config: cfg, DB: db}),
		db:       db,
		users:    repositories.NewGORMUserRepository(db),
		profiles: repositories.NewGORMProfileRepository(db),
		contacts: repositories.NewGORMContactRepository(db),
	}
}

// createUser stores an active user with testPassword.
func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	ctx := context.Background()
	hash, err := services.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: hash, IsActive: true}
	require.NoError(t, e.users.Create(ctx, user))
	_, err = e.profiles.GetOrCreate(ctx, user.ID)
	require.NoError(t, err)
	if role != models.RoleRegular {
		require.NoError(t, e.profiles.SetRole(ctx, user.ID, role))
	}
	return user
}

func (e *testEnv) createContact(t *testing.T, owner *models.User, name, email string) *models.Contact {
	t.Helper()
	c := &models.Contact{UserID: owner.ID, Name: name, Phone: "555-0100", Email: email, Additional: "-"}
	require.NoError(t, e.contacts.Create(context.Background(), c))
	return c
}

type response struct {
	status int
	body   string
	header http.Header
	resp   *http.Response
}

func (r response) json(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.body), &out), r.body)
	return out
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *testEnv) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: string(body), header: resp.Header, resp: resp}
}

// api sends a JSON request; raw strings are sent verbatim.
func (e *testEnv) api(t *testing.T, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func (e *testEnv) token(t *testing.T, username string) string {
	t.Helper()
	r := e.api(t, http.MethodPost, "/api/auth/token", "", map[string]string{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, r.status, r.body)
	token, _ := r.json(t)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// page sends a browser request carrying the session cookie, if any.
func (e *testEnv) page(t *testing.T, method, path string, cookie *http.Cookie, form url.Values) response {
	t.Helper()
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, reader)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return e.do(t, req)
}

// login signs in through the HTML form and returns the session cookie.
func (e *testEnv) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	r := e.page(t, http.MethodPost, "/login", nil, url.Values{
		"username": {username},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, r.status, r.body)
	cookie := r.cookie(sessionCookie)
	require.NotNil(t, cookie)
	return cookie
}
