package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

// Fallback texts for failures that carry no message
const (
	fallbackConnectError = "Connection failed"
	fallbackQueryError   = "Unknown error occurred"
)

// Gateway is the MCP backend as seen by the workflows
type Gateway interface {
	SetCredential(ctx context.Context, apiKey string) error
	Connect(ctx context.Context, server models.ServerDescriptor) ([]models.ToolDescriptor, error)
	Disconnect(ctx context.Context, serverID string) error
	SendQuery(ctx context.Context, query string) (string, error)
	ListServers(ctx context.Context) ([]string, error)
	ListTools(ctx context.Context) ([]models.ToolDescriptor, error)
}

// ImageVerifier checks that a container image exists before launch
type ImageVerifier interface {
	VerifyImage(ctx context.Context, ref string) error
}

// DashboardService runs the dashboard workflows: it calls the gateway and
// turns every outcome into store transitions. Gateway failures never
// escape a workflow; they end up in server status or the transcript.
type DashboardService struct {
	store    *store.Store
	gateway  Gateway
	verifier ImageVerifier
	jobs     *queue.JobQueue

	// configured is set once the backend accepted a credential
	configured atomic.Bool

	now   func() time.Time
	newID func(prefix string) string
}

// NewDashboardService creates the workflow service. verifier may be nil.
func NewDashboardService(st *store.Store, gateway Gateway, verifier ImageVerifier) *DashboardService {
	return &DashboardService{
		store:    st,
		gateway:  gateway,
		verifier: verifier,
		now:      time.Now,
		newID:    newTimeOrderedID,
	}
}

// SetJobQueue lets AddServer queue auto-connects
func (s *DashboardService) SetJobQueue(jobs *queue.JobQueue) {
	s.jobs = jobs
}

// newTimeOrderedID returns prefix-<uuidv7>, which sorts by creation time
func newTimeOrderedID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

// GatewayConfigured reports whether workflows can reach the backend
func (s *DashboardService) GatewayConfigured() bool {
	return s.gateway != nil && s.configured.Load()
}

// Snapshot returns the current state
func (s *DashboardService) Snapshot() models.AppState {
	return s.store.Snapshot()
}

// SetCredential hands key to the backend and, once accepted, records it
// and enables the workflows. A blank key resets the credential.
func (s *DashboardService) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		s.ResetCredential()
		return nil
	}
	if s.gateway == nil {
		return ErrGatewayNotConfigured
	}

	if err := s.gateway.SetCredential(ctx, key); err != nil {
		logger.WithField("error", err.Error()).Warnf("Backend rejected credential")
		return err
	}

	s.store.SetCredential(key)
	s.configured.Store(true)
	logger.Info("Credential accepted by MCP backend")
	return nil
}

// ResetCredential forgets the credential and disables the workflows
func (s *DashboardService) ResetCredential() {
	s.configured.Store(false)
	s.store.SetCredential("")
	logger.Info("Credential reset")
}

// AddServer registers a new disconnected server built from the form.
// With auto-connect enabled the connect workflow is queued for it.
func (s *DashboardService) AddServer(req models.CreateServerRequest) models.ServerDescriptor {
	server := req.ToDomain(s.newID("server"))
	state := s.store.AddServer(server)

	logger.WithServer(server.Id).WithField("name", server.Name).Info("MCP server added")

	if state.Settings.AutoConnect && s.GatewayConfigured() && s.jobs != nil {
		if err := s.jobs.Enqueue(&queue.WorkflowJob{Kind: queue.WorkflowConnect, ServerID: server.Id}); err != nil {
			logger.WithServer(server.Id).Warnf("Auto-connect not queued: %v", err)
		}
	}
	return server
}

// ImportServers adds every template as a new server
func (s *DashboardService) ImportServers(templates []models.CreateServerRequest) []models.ServerDescriptor {
	added := make([]models.ServerDescriptor, 0, len(templates))
	for _, tmpl := range templates {
		added = append(added, s.AddServer(tmpl))
	}
	return added
}

// Connect runs the connect workflow: connecting, then connected with the
// discovered tools, or error with a message.
func (s *DashboardService) Connect(ctx context.Context, id string) error {
	server, err := s.checkServer(id, queue.WorkflowConnect)
	if err != nil {
		logger.WithServer(id).Warnf("Connect skipped: %v", err)
		return err
	}

	connecting := models.StatusConnecting
	s.store.UpdateServer(id, models.ServerUpdate{Status: &connecting})
	log := logger.WithServer(id).WithField("name", server.Name)
	log.Info("Connecting to MCP server")

	if err := s.preflight(ctx, server); err != nil {
		s.failConnect(id, err)
		return nil
	}

	tools, err := s.gateway.Connect(ctx, server)
	if err != nil {
		s.failConnect(id, err)
		return nil
	}

	for i := range tools {
		if tools[i].ServerId == "" {
			tools[i].ServerId = id
		}
	}
	if tools == nil {
		tools = []models.ToolDescriptor{}
	}
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	now := s.now()
	connected := models.StatusConnected
	noError := ""
	update := models.ServerUpdate{
		Status:        &connected,
		Tools:         tools,
		LastConnected: &now,
		ErrorMessage:  &noError,
	}
	summary := s.systemMessage(fmt.Sprintf("Connected to %s. %d tools available: %s",
		server.Name, len(tools), strings.Join(names, ", ")))

	s.store.Dispatch(
		func(st models.AppState) models.AppState { return store.UpdateServer(st, id, update) },
		func(st models.AppState) models.AppState { return store.AddMessage(st, summary) },
	)
	log.WithField("tools", len(tools)).Info("Connected to MCP server")
	return nil
}

// preflight verifies container images when a verifier is configured.
// Only a missing image blocks the connect; other lookup failures are logged.
func (s *DashboardService) preflight(ctx context.Context, server models.ServerDescriptor) error {
	if s.verifier == nil || server.Type != models.ServerTypeDocker {
		return nil
	}
	err := s.verifier.VerifyImage(ctx, server.Path)
	if err == nil || errors.Is(err, ErrImageNotFound) {
		return err
	}
	logger.WithServer(server.Id).Warnf("Image verification unavailable: %v", err)
	return nil
}

func (s *DashboardService) failConnect(id string, err error) {
	msg := err.Error()
	if msg == "" {
		msg = fallbackConnectError
	}
	failed := models.StatusError
	s.store.UpdateServer(id, models.ServerUpdate{Status: &failed, ErrorMessage: &msg})
	logger.WithServer(id).WithField("error", msg).Warnf("Failed to connect to MCP server")
}

// Disconnect runs the disconnect workflow. The backend call is best
// effort: a failure is logged and the server is still marked disconnected.
func (s *DashboardService) Disconnect(ctx context.Context, id string) error {
	server, err := s.checkServer(id, queue.WorkflowDisconnect)
	if err != nil {
		logger.WithServer(id).Warnf("Disconnect skipped: %v", err)
		return err
	}

	if err := s.gateway.Disconnect(ctx, id); err != nil {
		logger.WithServer(id).WithField("error", err.Error()).Warnf("Backend disconnect failed, marking server disconnected anyway")
	}

	disconnected := models.StatusDisconnected
	noError := ""
	update := models.ServerUpdate{
		Status:       &disconnected,
		Tools:        []models.ToolDescriptor{},
		ErrorMessage: &noError,
	}
	note := s.systemMessage("Disconnected from " + server.Name)

	s.store.Dispatch(
		func(st models.AppState) models.AppState { return store.UpdateServer(st, id, update) },
		func(st models.AppState) models.AppState { return store.AddMessage(st, note) },
	)
	logger.WithServer(id).Info("Disconnected from MCP server")
	return nil
}

// Remove disconnects (best effort, outcome ignored) and then removes the
// server from the store.
func (s *DashboardService) Remove(ctx context.Context, id string) {
	if s.GatewayConfigured() {
		if err := s.gateway.Disconnect(ctx, id); err != nil {
			logger.WithServer(id).WithField("error", err.Error()).Debugf("Disconnect before removal failed")
		}
	}
	s.store.RemoveServer(id)
	logger.WithServer(id).Info("MCP server removed")
}

// SendMessage runs the chat workflow. The user message is appended right
// away, isProcessing stays true until the reply (or the failure notice)
// is in the transcript.
func (s *DashboardService) SendMessage(ctx context.Context, text string) error {
	if err := s.ValidateWorkflow(&queue.WorkflowJob{Kind: queue.WorkflowSendMessage, Text: text}); err != nil {
		logger.Warnf("Message not sent: %v", err)
		return err
	}

	userMsg := models.ChatMessage{
		Id:        s.newID("msg"),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: s.now(),
	}
	s.store.Dispatch(
		func(st models.AppState) models.AppState { return store.AddMessage(st, userMsg) },
		func(st models.AppState) models.AppState { return store.SetProcessing(st, true) },
	)
	defer s.store.SetProcessing(false)

	start := s.now()
	reply, err := s.gateway.SendQuery(ctx, text)
	elapsed := s.now().Sub(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallbackQueryError
		}
		s.store.AddMessage(s.systemMessage("Error: " + msg))
		logger.WithFields(map[string]interface{}{
			"message_id": userMsg.Id,
			"error":      msg,
		}).Warnf("Chat query failed")
		return nil
	}

	s.store.AddMessage(models.ChatMessage{
		Id:        s.newID("msg"),
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: s.now(),
		Metadata:  &models.MessageMetadata{ProcessingTime: elapsed},
	})
	logger.WithFields(map[string]interface{}{
		"message_id":  userMsg.Id,
		"duration_ms": elapsed,
	}).Info("Chat query answered")
	return nil
}

// ClearMessages resets the transcript to the welcome message
func (s *DashboardService) ClearMessages() models.AppState {
	return s.store.ClearMessages()
}

// UpdateSettings merges a settings change
func (s *DashboardService) UpdateSettings(update models.SettingsUpdate) models.AppState {
	return s.store.UpdateSettings(update)
}

// SetActiveServer selects the active server; nil clears it
func (s *DashboardService) SetActiveServer(id *string) (models.AppState, error) {
	if id != nil {
		if _, ok := store.FindServer(s.store.Snapshot(), *id); !ok {
			return models.AppState{}, ErrServerNotFound
		}
	}
	return s.store.SetActiveServer(id), nil
}

// RemoteServers lists the servers the backend holds connections to
func (s *DashboardService) RemoteServers(ctx context.Context) ([]string, error) {
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return s.gateway.ListServers(ctx)
}

// RemoteTools lists every tool the backend can call
func (s *DashboardService) RemoteTools(ctx context.Context) ([]models.ToolDescriptor, error) {
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return s.gateway.ListTools(ctx)
}

// ValidateWorkflow checks a job's preconditions against the current state
// so callers can reject it before queueing.
func (s *DashboardService) ValidateWorkflow(job *queue.WorkflowJob) error {
	switch job.Kind {
	case queue.WorkflowConnect, queue.WorkflowDisconnect, queue.WorkflowRemove:
		_, err := s.checkServer(job.ServerID, job.Kind)
		return err
	case queue.WorkflowSendMessage:
		if !s.GatewayConfigured() {
			return ErrGatewayNotConfigured
		}
		if strings.TrimSpace(job.Text) == "" {
			return ErrEmptyMessage
		}
		return nil
	default:
		return fmt.Errorf("unknown workflow %q", job.Kind)
	}
}

// checkServer looks up the target of a server workflow.
// Removal works without a configured gateway.
func (s *DashboardService) checkServer(id string, kind queue.WorkflowKind) (models.ServerDescriptor, error) {
	if kind != queue.WorkflowRemove && !s.GatewayConfigured() {
		return models.ServerDescriptor{}, ErrGatewayNotConfigured
	}
	server, ok := store.FindServer(s.store.Snapshot(), id)
	if !ok {
		return models.ServerDescriptor{}, ErrServerNotFound
	}
	if kind == queue.WorkflowConnect && server.Status == models.StatusConnected {
		return models.ServerDescriptor{}, ErrAlreadyConnected
	}
	return server, nil
}

// ExecuteJob runs a queued workflow
func (s *DashboardService) ExecuteJob(ctx context.Context, job *queue.WorkflowJob) error {
	switch job.Kind {
	case queue.WorkflowConnect:
		return s.Connect(ctx, job.ServerID)
	case queue.WorkflowDisconnect:
		return s.Disconnect(ctx, job.ServerID)
	case queue.WorkflowRemove:
		s.Remove(ctx, job.ServerID)
		return nil
	case queue.WorkflowSendMessage:
		return s.SendMessage(ctx, job.Text)
	default:
		return fmt.Errorf("unknown workflow %q", job.Kind)
	}
}

func (s *DashboardService) systemMessage(content string) models.ChatMessage {
	return models.ChatMessage{
		Id:        s.newID("msg"),
		Role:      models.RoleSystem,
		Content:   content,
		Timestamp: s.now(),
	}
}
