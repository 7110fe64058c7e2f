package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"spotmate/config"
	"spotmate/internal/auth"
	"spotmate/pkg/geo"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// locationFrame is the only inbound message type: the client reporting where
// it is now.
type locationFrame struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpgradeNearbyWS upgrades a live nearby session. Auth comes from the token
// query param, the starting coordinate from lat/lng query params; the client
// keeps the coordinate fresh with {"lat","lng"} frames.
func UpgradeNearbyWS(cfg *config.JWTConfig, hub *NearbyHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		token := c.Query("token")
		if token == "" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"token required"}`))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
			return
		}

		client := &Client{
			UserID: claims.UserID,
			Send:   make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()

		w := &watcher{
			client:  client,
			userID:  claims.UserID,
			refresh: make(chan struct{}, 1),
			done:    make(chan struct{}),
			stopped: make(chan struct{}),
		}
		if coord, ok := queryCoord(c); ok {
			w.setCoord(coord)
		}
		hub.addWatcher(w)
		defer hub.removeWatcher(w)

		go hub.run(w)
		go writePump(client, conn)
		readPump(conn, w)
	}
}

func queryCoord(c *gin.Context) (geo.Coordinate, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return geo.Coordinate{}, false
	}
	coord := geo.Coordinate{Lat: lat, Lng: lng}
	return coord, coord.Valid()
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes location frames until the connection drops.
func readPump(conn *websocket.Conn, w *watcher) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame locationFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		coord := geo.Coordinate{Lat: frame.Lat, Lng: frame.Lng}
		if !coord.Valid() {
			continue
		}
		w.setCoord(coord)
		w.nudge()
	}
}
