package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"ticket-chain/internal/session"
)

type SessionHandler struct {
	sessions *session.Store
}

func NewSessionHandler(sessions *session.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) SetToken(c echo.Context) error {
	var req struct {
		Kind  string `json:"kind"`
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "Invalid request",
		})
	}

	kind := session.KindUser
	if req.Kind == string(session.KindWallet) {
		kind = session.KindWallet
	}
	if err := h.sessions.SetToken(kind, req.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"status":  false,
			"message": "Failed to store session",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"status": true})
}

func (h *SessionHandler) ClearToken(c echo.Context) error {
	kind := session.KindUser
	if c.QueryParam("kind") == string(session.KindWallet) {
		kind = session.KindWallet
	}
	h.sessions.Expire(kind)

	return c.JSON(http.StatusOK, map[string]any{"status": true})
}

func (h *SessionHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"user_session":   h.sessions.Token(session.KindUser) != "",
			"wallet_session": h.sessions.Token(session.KindWallet) != "",
		},
	})
}
