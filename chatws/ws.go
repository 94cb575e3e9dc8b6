package chatws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"homevia/db"
	"homevia/middleware"
	"homevia/models"
	"homevia/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Gate decides whether a user may join a room. Satisfied by the
// chat-session manager plus the meeting participant lookup, wired in
// main.
type Gate interface {
	Authorize(ctx context.Context, roomToken, userID string) error
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type inboundPayload struct {
	Action  string `json:"action"` // "chat"
	Content string `json:"content,omitempty"`
}

type outboundPayload struct {
	Action    string `json:"action"`
	ID        string `json:"id"`
	Room      string `json:"room,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// WebSocketHandler joins the caller to the room behind an active chat
// session. History is replayed oldest first before live traffic starts.
func WebSocketHandler(hub *Hub, gate Gate) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room := ps.ByName("roomToken")

		// Browsers cannot set headers on websocket dials; accept the
		// token from the query string as well.
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			tokenString = "Bearer " + r.URL.Query().Get("token")
		}
		claims, err := middleware.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		userID := claims.UserID
		if err := gate.Authorize(r.Context(), room, userID); err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := NewClient(conn, room, userID)

		go replayHistory(client, room)

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

// replayHistory sends the last 30 stored messages, oldest first.
func replayHistory(client *Client, room string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(30)

	cur, err := db.MessagesCollection.Find(ctx, bson.M{"room": room}, opts)
	if err != nil {
		log.Println("history find:", err)
		return
	}
	defer cur.Close(ctx)

	var history []models.ChatMessage
	if err := cur.All(ctx, &history); err != nil {
		log.Println("history decode:", err)
		return
	}
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		out := outboundPayload{
			Action:    "chat",
			ID:        m.MessageID,
			Room:      m.Room,
			SenderID:  m.SenderID,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		data, err := json.Marshal(out)
		if err != nil {
			continue
		}
		if !client.deliver(data) {
			// client dropped mid-replay
			return
		}
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for {
		select {
		case msg := <-c.Send:
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundPayload
		if err := json.Unmarshal(data, &in); err != nil {
			log.Printf("invalid payload: %v", err)
			continue
		}
		if in.Action != "chat" || in.Content == "" {
			continue
		}

		msg := models.ChatMessage{
			MessageID: utils.GenerateRandomDigitString(16),
			Room:      c.Room,
			SenderID:  c.UserID,
			Content:   in.Content,
			Timestamp: time.Now().Unix(),
		}
		if _, err := db.MessagesCollection.InsertOne(context.Background(), msg); err != nil {
			log.Printf("insert error: %v", err)
			continue
		}

		out := outboundPayload{
			Action:    "chat",
			ID:        msg.MessageID,
			Room:      msg.Room,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		if data, err := json.Marshal(out); err == nil {
			hub.broadcast <- broadcastMsg{Room: c.Room, Data: data}
		}
	}
}
