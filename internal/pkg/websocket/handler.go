package websocket

import (
	"errors"
	"net/http"
)

// ErrHubStopped is returned by Serve after the hub has shut down
var ErrHubStopped = errors.New("feed hub stopped")

// Serve upgrades the request and subscribes the connection to changes of organizationID.
// On an upgrade failure the upgrader has already replied to the client.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, organizationID int64, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:            h,
		conn:           conn,
		send:           make(chan []byte, 16),
		userID:         userID,
		organizationID: organizationID,
		logger:         h.logger,
	}
	if !h.join(client) {
		conn.Close()
		return ErrHubStopped
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("organizationID", organizationID).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Feed connection established")
	return nil
}
