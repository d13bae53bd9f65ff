package ws

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", Upgrade, hub.Handler())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	defer app.Shutdown()

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast("stride-bookmarks")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventChanged, ev.Type)
	assert.Equal(t, "stride-bookmarks", ev.Key)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.Broadcast("k")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked without a running hub")
	}
}

func TestUpgradeRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/ws", Upgrade, func(c *fiber.Ctx) error { return c.SendString("no") })
	resp, err := app.Test(newRequest("/ws"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func newRequest(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}
