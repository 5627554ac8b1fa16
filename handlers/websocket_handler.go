package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/kumiteops/kumite-system/brackets"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the scoreboard frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeEventWs subscribes a client to bracket-level updates for one event.
func (h *WebSocketHandler) ServeEventWs(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serve(w, r, brackets.EventRoom(eventID))
}

// ServeMatchWs subscribes a client to live scoring updates for one match.
func (h *WebSocketHandler) ServeMatchWs(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.serve(w, r, brackets.MatchRoom(matchID))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, roomID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.logger.Error("websocket upgrade failed", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client registered", slog.String("room", roomID))
}
