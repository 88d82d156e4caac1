package session_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactbook/internal/session"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestRedisStorage(t *testing.T) {
	mr, client := newRedis(t)
	storage := session.NewRedisStorage(client, "sess:")
	defer storage.Close()

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("a", []byte("1"), time.Minute))
	require.NoError(t, storage.Set("b", []byte("2"), 0))
	require.NoError(t, mr.Set("other", "keep"))

	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	assert.True(t, mr.Exists("sess:a"))

	mr.FastForward(2 * time.Minute)
	val, err = storage.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val, "expired keys vanish")

	require.NoError(t, storage.Delete("b"))
	assert.False(t, mr.Exists("sess:b"))

	require.NoError(t, storage.Set("c", []byte("3"), 0))
	require.NoError(t, storage.Reset())
	assert.False(t, mr.Exists("sess:c"))
	assert.True(t, mr.Exists("other"), "reset only touches prefixed keys")
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := session.OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = session.OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestStoreLoginAndFlash(t *testing.T) {
	_, client := newRedis(t)
	store := session.NewStore(session.Config{CookieName: "test_session", TTL: time.Hour},
		session.NewRedisStorage(client, "sess:"))

	app := fiber.New()
	app.Post("/login", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if err := session.Login(sess, 7); err != nil {
			return err
		}
		session.SetFlash(sess, session.FlashSuccess, "welcome")
		return sess.Save()
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		msg := ""
		if flash := session.PopFlash(sess); flash != nil {
			msg = flash.Level + ":" + flash.Message
		}
		userID := session.UserID(sess)
		if err := sess.Save(); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": userID, "flash": msg})
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	get := func() string {
		req := httptest.NewRequest("GET", "/me", nil)
		req.AddCookie(cookies[0])
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}
	first := get()
	assert.Contains(t, first, `"user_id":7`)
	assert.Contains(t, first, `"flash":"success:welcome"`)

	// flash is shown once
	second := get()
	assert.Contains(t, second, `"user_id":7`)
	assert.True(t, strings.Contains(second, `"flash":""`))
}
