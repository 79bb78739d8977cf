package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tmaxmax/go-sse"

	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/services"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

// stateEventType tags state snapshots on the event stream
const stateEventType = "state"

// SessionHandler serves the session state, its event stream, the
// credential and the settings.
type SessionHandler struct {
	dashboard *services.DashboardService
	store     *store.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(dashboard *services.DashboardService, st *store.Store) *SessionHandler {
	return &SessionHandler{
		dashboard: dashboard,
		store:     st,
	}
}

// State returns the snapshot the view renders from
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, store.View(h.dashboard.Snapshot()))
}

// Events streams a state snapshot after every change until the client
// goes away. The current state is sent first.
func (h *SessionHandler) Events(c *gin.Context) {
	updates, cancel := h.store.Subscribe()
	defer cancel()

	sess, err := sse.Upgrade(c.Writer, c.Request)
	if err != nil {
		logger.WithField("error", err.Error()).Warnf("Failed to upgrade event stream")
		respondError(c, err)
		return
	}

	log := logger.WithField("remote_addr", c.ClientIP())
	log.Debugf("Event stream opened")

	if err := sendState(sess, h.dashboard.Snapshot()); err != nil {
		log.WithField("error", err.Error()).Debugf("Event stream closed")
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debugf("Event stream closed by client")
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := sendState(sess, state); err != nil {
				log.WithField("error", err.Error()).Debugf("Event stream closed")
				return
			}
		}
	}
}

func sendState(sess *sse.Session, state models.AppState) error {
	data, err := json.Marshal(store.View(state))
	if err != nil {
		return err
	}

	msg := sse.Message{Type: sse.Type(stateEventType)}
	msg.AppendData(string(data))
	if err := sess.Send(&msg); err != nil {
		return err
	}
	return sess.Flush()
}

// SetCredential passes the API key to the backend. An empty key resets it.
func (h *SessionHandler) SetCredential(c *gin.Context) {
	var req models.SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.dashboard.SetCredential(c.Request.Context(), req.APIKey); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hasCredential": h.dashboard.GatewayConfigured()})
}

// ResetCredential forgets the API key
func (h *SessionHandler) ResetCredential(c *gin.Context) {
	h.dashboard.ResetCredential()

	c.JSON(http.StatusOK, gin.H{"hasCredential": false})
}

// UpdateSettings merges a partial settings update
func (h *SessionHandler) UpdateSettings(c *gin.Context) {
	var req models.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	state := h.dashboard.UpdateSettings(req)

	c.JSON(http.StatusOK, state.Settings)
}
