package hub

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// WSClient adapts one gorilla websocket connection to the game.Conn
// interface. Outbound events go through a buffered send channel drained by
// the write pump; inbound frames are dispatched by the read pump, one at a
// time per connection.
type WSClient struct {
	id       string
	identity string
	conn     *websocket.Conn
	service  *game.Service
	hub      *Hub
	logger   *slog.Logger
	send     chan any
}

func newWSClient(hub *Hub, conn *websocket.Conn, identity string) *WSClient {
	id := uuid.New().String()
	return &WSClient{
		id:       id,
		identity: identity,
		conn:     conn,
		service:  hub.service,
		hub:      hub,
		logger:   hub.logger.With("connection", id),
		send:     make(chan any, sendBufferSize),
	}
}

func (c *WSClient) ID() string       { return c.id }
func (c *WSClient) Identity() string { return c.identity }

// Run starts the read and write pumps. It returns when the connection dies.
func (c *WSClient) Run() {
	go c.writePump()
	c.readPump()
}

// enqueue hands the event to the write pump without blocking the caller. A
// connection that cannot keep up loses events rather than stalling the room.
func (c *WSClient) enqueue(msg any) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping event")
	}
}

func (c *WSClient) RoomCreated(room models.Room) {
	c.enqueue(roomCreatedMessage{Type: "roomCreated", Room: room})
}

func (c *WSClient) Matched(room models.Room) {
	c.enqueue(matchedMessage{Type: "matched", Room: room})
}

func (c *WSClient) System(msg string) {
	c.enqueue(systemMessage{Type: "system", Msg: msg})
}

func (c *WSClient) CharacterLocked(character string) {
	c.enqueue(characterLockedMessage{Type: "characterLocked", Character: character})
}

func (c *WSClient) QuestionForMurderer(correlationID, character, question string, deadline time.Time) {
	c.enqueue(questionForMurdererMessage{
		Type:          "questionForMurderer",
		CorrelationID: correlationID,
		Character:     character,
		Question:      question,
		Deadline:      deadline,
	})
}

func (c *WSClient) Answer(character, answer string) {
	c.enqueue(answerMessage{Type: "answer", Character: character, Answer: answer})
}

func (c *WSClient) Error(code, msg string) {
	c.enqueue(errorMessage{Type: "error", Code: code, Msg: msg})
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err.Error())
			}
			return
		}

		var msg clientMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			c.Error("BadRequest", "malformed event")
			continue
		}
		c.dispatch(msg)
	}
}

// dispatch routes one client event to the coordination core. Protocol errors
// go back to this connection only; the room never crashes on a bad request.
func (c *WSClient) dispatch(msg clientMessage) {
	var err error
	switch msg.Type {
	case "createRoom":
		err = c.service.CreateRoom(c, msg.PreferredCode, msg.DisplayName)
	case "queueForRole":
		err = c.service.Enqueue(c, models.Role(msg.Role))
	case "joinRole":
		role := models.Role(msg.Role)
		if msg.Role == "observer" {
			role = ""
		}
		err = c.service.JoinRole(c, msg.Room, role)
	case "setHumanCharacter":
		err = c.service.LockCharacter(c, msg.Character)
	case "ask":
		err = c.service.Ask(c, msg.Character, msg.Question)
	case "murdererAnswer":
		err = c.service.Answer(c, msg.CorrelationID, msg.Answer)
	case "murdererAck":
		c.service.Ack(c, msg.CorrelationID)
	default:
		c.Error("BadRequest", "unknown event type: "+msg.Type)
		return
	}
	if err != nil {
		c.Error(game.ErrorCode(err), err.Error())
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
