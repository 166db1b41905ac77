package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/bus"
)

// upgradeRequired rejects plain HTTP requests on the live endpoint and
// resolves the share token before the connection is upgraded, so an
// unknown token still gets a regular 404.
func upgradeRequired(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := registry.GetPublicPoll(c.Params("shareToken")); err != nil {
		return mapServiceError(err)
	}
	return c.Next()
}

// liveUpdates streams vote_update events for one poll. The subscription
// is torn down when either side closes the connection; a slow client
// only loses events, it never blocks the ledger.
func liveUpdates() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		token := conn.Params("shareToken")

		sub := bus.NewSubscriber()
		hub.Subscribe(token, sub)
		defer hub.Unsubscribe(token, sub)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case payload, ok := <-sub.Feed():
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}
