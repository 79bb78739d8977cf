package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/store"
)

// fakeGateway records calls and answers from its configured hooks
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	credentialErr error
	connect       func(models.ServerDescriptor) ([]models.ToolDescriptor, error)
	disconnectErr error
	query         func(string) (string, error)
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) SetCredential(ctx context.Context, apiKey string) error {
	f.record("credential")
	return f.credentialErr
}

func (f *fakeGateway) Connect(ctx context.Context, server models.ServerDescriptor) ([]models.ToolDescriptor, error) {
	f.record("connect:" + server.Id)
	if f.connect == nil {
		return []models.ToolDescriptor{}, nil
	}
	return f.connect(server)
}

func (f *fakeGateway) Disconnect(ctx context.Context, serverID string) error {
	f.record("disconnect:" + serverID)
	return f.disconnectErr
}

func (f *fakeGateway) SendQuery(ctx context.Context, query string) (string, error) {
	f.record("query")
	if f.query == nil {
		return "", nil
	}
	return f.query(query)
}

func (f *fakeGateway) ListServers(ctx context.Context) ([]string, error) {
	f.record("list-servers")
	return []string{"server-a"}, nil
}

func (f *fakeGateway) ListTools(ctx context.Context) ([]models.ToolDescriptor, error) {
	f.record("list-tools")
	return []models.ToolDescriptor{{Name: "add"}}, nil
}

type fakeVerifier struct {
	err  error
	refs []string
}

func (v *fakeVerifier) VerifyImage(ctx context.Context, ref string) error {
	v.refs = append(v.refs, ref)
	return v.err
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestService returns a service with a credential already accepted
func newTestService(t *testing.T, gw *fakeGateway) (*DashboardService, *store.Store) {
	t.Helper()
	st := store.New(testNow)
	svc := NewDashboardService(st, gw, nil)
	svc.now = func() time.Time { return testNow }

	var seq int
	svc.newID = func(prefix string) string {
		seq++
		return fmt.Sprintf("%s-%d", prefix, seq)
	}

	require.NoError(t, svc.SetCredential(context.Background(), "test-key"))
	return svc, st
}

func calcTemplate() models.CreateServerRequest {
	return models.CreateServerRequest{Name: "Calc", Path: "/srv/calc.js", Type: models.ServerTypeNode}
}

func addTool() models.ToolDescriptor {
	return models.ToolDescriptor{Name: "add", Description: "Add two numbers"}
}

func lastMessage(state models.AppState) models.ChatMessage {
	return state.Messages[len(state.Messages)-1]
}

func TestAddServerStartsDisconnected(t *testing.T) {
	svc, st := newTestService(t, &fakeGateway{})

	server := svc.AddServer(calcTemplate())

	assert.Equal(t, "server-1", server.Id)
	assert.Equal(t, models.StatusDisconnected, server.Status)
	assert.Empty(t, server.Tools)
	require.Len(t, st.Snapshot().Servers, 1)
}

func TestAddServerQueuesAutoConnect(t *testing.T) {
	svc, st := newTestService(t, &fakeGateway{})
	jobs := queue.NewJobQueue(4)
	svc.SetJobQueue(jobs)

	svc.AddServer(calcTemplate())
	assert.Equal(t, 0, jobs.Len())

	enabled := true
	st.UpdateSettings(models.SettingsUpdate{AutoConnect: &enabled})
	server := svc.AddServer(calcTemplate())
	require.Equal(t, 1, jobs.Len())

	jobs.Close()
	var got []*queue.WorkflowJob
	pool := queue.NewWorkerPool(jobs, 1)
	pool.Start(func(job *queue.WorkflowJob) error {
		got = append(got, job)
		return nil
	})
	pool.Wait()

	require.Len(t, got, 1)
	assert.Equal(t, queue.WorkflowConnect, got[0].Kind)
	assert.Equal(t, server.Id, got[0].ServerID)
}

func TestConnectSuccess(t *testing.T) {
	gw := &fakeGateway{
		connect: func(models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			return []models.ToolDescriptor{addTool()}, nil
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))

	state := st.Snapshot()
	got, ok := store.FindServer(state, server.Id)
	require.True(t, ok)
	assert.Equal(t, models.StatusConnected, got.Status)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "add", got.Tools[0].Name)
	assert.Equal(t, server.Id, got.Tools[0].ServerId)
	require.NotNil(t, got.LastConnected)
	assert.Equal(t, testNow, *got.LastConnected)
	assert.Empty(t, got.ErrorMessage)

	msg := lastMessage(state)
	assert.Equal(t, models.RoleSystem, msg.Role)
	assert.Equal(t, "Connected to Calc. 1 tools available: add", msg.Content)
}

func TestConnectSendsPreUpdateDescriptor(t *testing.T) {
	var sent models.ServerDescriptor
	gw := &fakeGateway{
		connect: func(s models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			sent = s
			return nil, nil
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))

	assert.Equal(t, models.StatusDisconnected, sent.Status)
	got, _ := store.FindServer(st.Snapshot(), server.Id)
	assert.NotNil(t, got.Tools)
	assert.Empty(t, got.Tools)
}

func TestConnectObservesConnectingDuringCall(t *testing.T) {
	var during models.ServerStatus
	var st *store.Store
	gw := &fakeGateway{
		connect: func(s models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			got, _ := store.FindServer(st.Snapshot(), s.Id)
			during = got.Status
			return nil, nil
		},
	}
	svc, s := newTestService(t, gw)
	st = s
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))
	assert.Equal(t, models.StatusConnecting, during)
}

func TestConnectFailureKeepsToolsAndRecordsError(t *testing.T) {
	gw := &fakeGateway{
		connect: func(models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			return nil, errors.New("spawn ENOENT")
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())
	before := len(st.Snapshot().Messages)

	require.NoError(t, svc.Connect(context.Background(), server.Id))

	state := st.Snapshot()
	got, _ := store.FindServer(state, server.Id)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Equal(t, "spawn ENOENT", got.ErrorMessage)
	assert.Empty(t, got.Tools)
	assert.Len(t, state.Messages, before)
}

func TestConnectFailureWithoutMessageUsesFallback(t *testing.T) {
	gw := &fakeGateway{
		connect: func(models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			return nil, errors.New("")
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))

	got, _ := store.FindServer(st.Snapshot(), server.Id)
	assert.Equal(t, "Connection failed", got.ErrorMessage)
}

func TestConnectRetryFromErrorClearsMessage(t *testing.T) {
	fail := true
	gw := &fakeGateway{
		connect: func(models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []models.ToolDescriptor{addTool()}, nil
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))
	fail = false
	require.NoError(t, svc.Connect(context.Background(), server.Id))

	got, _ := store.FindServer(st.Snapshot(), server.Id)
	assert.Equal(t, models.StatusConnected, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestConnectPreconditions(t *testing.T) {
	t.Run("unknown server makes no gateway call", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, _ := newTestService(t, gw)

		err := svc.Connect(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrServerNotFound)
		assert.Equal(t, []string{"credential"}, gw.Calls())
	})

	t.Run("already connected is rejected", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, _ := newTestService(t, gw)
		server := svc.AddServer(calcTemplate())
		require.NoError(t, svc.Connect(context.Background(), server.Id))

		err := svc.Connect(context.Background(), server.Id)
		assert.ErrorIs(t, err, ErrAlreadyConnected)
	})

	t.Run("unconfigured gateway leaves state untouched", func(t *testing.T) {
		gw := &fakeGateway{}
		st := store.New(testNow)
		svc := NewDashboardService(st, gw, nil)
		server := svc.AddServer(calcTemplate())
		before := st.Snapshot()

		err := svc.Connect(context.Background(), server.Id)

		assert.ErrorIs(t, err, ErrGatewayNotConfigured)
		assert.Equal(t, before, st.Snapshot())
		assert.Empty(t, gw.Calls())
	})
}

func TestConnectVerifiesDockerImages(t *testing.T) {
	t.Run("missing image fails the connect", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, st := newTestService(t, gw)
		svc.verifier = &fakeVerifier{err: fmt.Errorf("repo:tag: %w", ErrImageNotFound)}
		server := svc.AddServer(models.CreateServerRequest{Name: "Img", Path: "repo:tag", Type: models.ServerTypeDocker})

		require.NoError(t, svc.Connect(context.Background(), server.Id))

		got, _ := store.FindServer(st.Snapshot(), server.Id)
		assert.Equal(t, models.StatusError, got.Status)
		assert.Contains(t, got.ErrorMessage, "container image not found")
		assert.NotContains(t, gw.Calls(), "connect:"+server.Id)
	})

	t.Run("registry outage does not block", func(t *testing.T) {
		gw := &fakeGateway{}
		svc, st := newTestService(t, gw)
		svc.verifier = &fakeVerifier{err: errors.New("throttled")}
		server := svc.AddServer(models.CreateServerRequest{Name: "Img", Path: "repo:tag", Type: models.ServerTypeDocker})

		require.NoError(t, svc.Connect(context.Background(), server.Id))

		got, _ := store.FindServer(st.Snapshot(), server.Id)
		assert.Equal(t, models.StatusConnected, got.Status)
	})

	t.Run("non docker servers are not verified", func(t *testing.T) {
		verifier := &fakeVerifier{}
		svc, _ := newTestService(t, &fakeGateway{})
		svc.verifier = verifier
		server := svc.AddServer(calcTemplate())

		require.NoError(t, svc.Connect(context.Background(), server.Id))
		assert.Empty(t, verifier.refs)
	})
}

func TestDisconnectClearsTools(t *testing.T) {
	gw := &fakeGateway{
		connect: func(models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			return []models.ToolDescriptor{addTool()}, nil
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())
	require.NoError(t, svc.Connect(context.Background(), server.Id))

	require.NoError(t, svc.Disconnect(context.Background(), server.Id))

	state := st.Snapshot()
	got, _ := store.FindServer(state, server.Id)
	assert.Equal(t, models.StatusDisconnected, got.Status)
	assert.Empty(t, got.Tools)
	assert.Equal(t, "Disconnected from Calc", lastMessage(state).Content)
	assert.Equal(t, 0, store.TotalTools(state))
}

func TestDisconnectFailureStillDisconnects(t *testing.T) {
	gw := &fakeGateway{disconnectErr: errors.New("backend down")}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())
	require.NoError(t, svc.Connect(context.Background(), server.Id))

	require.NoError(t, svc.Disconnect(context.Background(), server.Id))

	got, _ := store.FindServer(st.Snapshot(), server.Id)
	assert.Equal(t, models.StatusDisconnected, got.Status)
	assert.Empty(t, got.ErrorMessage)
}

func TestRemoveDeletesEvenWhenDisconnectFails(t *testing.T) {
	gw := &fakeGateway{disconnectErr: errors.New("backend down")}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())
	st.SetActiveServer(&server.Id)

	svc.Remove(context.Background(), server.Id)

	state := st.Snapshot()
	assert.Empty(t, state.Servers)
	assert.Nil(t, state.ActiveServerId)
	assert.Contains(t, gw.Calls(), "disconnect:"+server.Id)
}

func TestRemoveDuringConnectDropsLateResult(t *testing.T) {
	var svc *DashboardService
	gw := &fakeGateway{
		connect: func(s models.ServerDescriptor) ([]models.ToolDescriptor, error) {
			svc.Remove(context.Background(), s.Id)
			return []models.ToolDescriptor{addTool()}, nil
		},
	}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())

	require.NoError(t, svc.Connect(context.Background(), server.Id))

	state := st.Snapshot()
	assert.Empty(t, state.Servers)
	assert.Equal(t, "Connected to Calc. 1 tools available: add", lastMessage(state).Content)
}

func TestSendMessageSuccess(t *testing.T) {
	var processing bool
	var st *store.Store
	gw := &fakeGateway{
		query: func(q string) (string, error) {
			processing = st.Snapshot().IsProcessing
			assert.Equal(t, "2+2", q)
			return "4", nil
		},
	}
	svc, s := newTestService(t, gw)
	st = s
	before := len(st.Snapshot().Messages)

	require.NoError(t, svc.SendMessage(context.Background(), "2+2"))

	state := st.Snapshot()
	assert.True(t, processing)
	assert.False(t, state.IsProcessing)
	require.Len(t, state.Messages, before+2)

	user := state.Messages[before]
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "2+2", user.Content)

	reply := state.Messages[before+1]
	assert.Equal(t, models.RoleAssistant, reply.Role)
	assert.Equal(t, "4", reply.Content)
	require.NotNil(t, reply.Metadata)
	assert.GreaterOrEqual(t, reply.Metadata.ProcessingTime, int64(0))
}

func TestSendMessageFailureAppendsSystemMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "with message", err: errors.New("model overloaded"), want: "Error: model overloaded"},
		{name: "without message", err: errors.New(""), want: "Error: Unknown error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{query: func(string) (string, error) { return "", tt.err }}
			svc, st := newTestService(t, gw)

			require.NoError(t, svc.SendMessage(context.Background(), "hi"))

			state := st.Snapshot()
			assert.False(t, state.IsProcessing)
			msg := lastMessage(state)
			assert.Equal(t, models.RoleSystem, msg.Role)
			assert.Equal(t, tt.want, msg.Content)
		})
	}
}

func TestSendMessagePreconditions(t *testing.T) {
	gw := &fakeGateway{}
	svc, st := newTestService(t, gw)
	before := st.Snapshot()

	assert.ErrorIs(t, svc.SendMessage(context.Background(), "   "), ErrEmptyMessage)
	assert.Equal(t, before, st.Snapshot())
	assert.NotContains(t, gw.Calls(), "query")

	svc.ResetCredential()
	assert.ErrorIs(t, svc.SendMessage(context.Background(), "hi"), ErrGatewayNotConfigured)
}

func TestSetCredential(t *testing.T) {
	t.Run("rejected key leaves gateway unconfigured", func(t *testing.T) {
		st := store.New(testNow)
		svc := NewDashboardService(st, &fakeGateway{credentialErr: errors.New("invalid key")}, nil)

		err := svc.SetCredential(context.Background(), "bad")

		assert.EqualError(t, err, "invalid key")
		assert.False(t, svc.GatewayConfigured())
		assert.False(t, store.HasCredential(st.Snapshot()))
	})

	t.Run("blank key resets", func(t *testing.T) {
		svc, st := newTestService(t, &fakeGateway{})
		require.True(t, svc.GatewayConfigured())

		require.NoError(t, svc.SetCredential(context.Background(), "  "))

		assert.False(t, svc.GatewayConfigured())
		assert.False(t, store.HasCredential(st.Snapshot()))
	})
}

func TestExecuteJobDispatchesWorkflows(t *testing.T) {
	gw := &fakeGateway{query: func(string) (string, error) { return "ok", nil }}
	svc, st := newTestService(t, gw)
	server := svc.AddServer(calcTemplate())
	ctx := context.Background()

	require.NoError(t, svc.ExecuteJob(ctx, &queue.WorkflowJob{Kind: queue.WorkflowConnect, ServerID: server.Id}))
	require.NoError(t, svc.ExecuteJob(ctx, &queue.WorkflowJob{Kind: queue.WorkflowSendMessage, Text: "hi"}))
	require.NoError(t, svc.ExecuteJob(ctx, &queue.WorkflowJob{Kind: queue.WorkflowDisconnect, ServerID: server.Id}))
	require.NoError(t, svc.ExecuteJob(ctx, &queue.WorkflowJob{Kind: queue.WorkflowRemove, ServerID: server.Id}))
	assert.Error(t, svc.ExecuteJob(ctx, &queue.WorkflowJob{Kind: "reboot"}))

	assert.Empty(t, st.Snapshot().Servers)
	assert.Equal(t, []string{
		"credential",
		"connect:" + server.Id,
		"query",
		"disconnect:" + server.Id,
		"disconnect:" + server.Id,
	}, gw.Calls())
}

func TestRemoteListings(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{})

	servers, err := svc.RemoteServers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"server-a"}, servers)

	tools, err := svc.RemoteTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "add", tools[0].Name)
}

func TestValidateWorkflow(t *testing.T) {
	svc, st := newTestService(t, &fakeGateway{})
	server := svc.AddServer(calcTemplate())
	connected := models.StatusConnected
	st.UpdateServer(server.Id, models.ServerUpdate{Status: &connected})

	tests := []struct {
		name string
		job  queue.WorkflowJob
		want error
	}{
		{name: "connect connected server", job: queue.WorkflowJob{Kind: queue.WorkflowConnect, ServerID: server.Id}, want: ErrAlreadyConnected},
		{name: "connect unknown server", job: queue.WorkflowJob{Kind: queue.WorkflowConnect, ServerID: "nope"}, want: ErrServerNotFound},
		{name: "disconnect connected server", job: queue.WorkflowJob{Kind: queue.WorkflowDisconnect, ServerID: server.Id}},
		{name: "remove unknown server", job: queue.WorkflowJob{Kind: queue.WorkflowRemove, ServerID: "nope"}, want: ErrServerNotFound},
		{name: "blank message", job: queue.WorkflowJob{Kind: queue.WorkflowSendMessage, Text: "\n"}, want: ErrEmptyMessage},
		{name: "message", job: queue.WorkflowJob{Kind: queue.WorkflowSendMessage, Text: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidateWorkflow(&tt.job)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSetActiveServer(t *testing.T) {
	svc, _ := newTestService(t, &fakeGateway{})
	server := svc.AddServer(calcTemplate())

	state, err := svc.SetActiveServer(&server.Id)
	require.NoError(t, err)
	require.NotNil(t, state.ActiveServerId)
	assert.Equal(t, server.Id, *state.ActiveServerId)

	missing := "server-x"
	_, err = svc.SetActiveServer(&missing)
	assert.ErrorIs(t, err, ErrServerNotFound)

	state, err = svc.SetActiveServer(nil)
	require.NoError(t, err)
	assert.Nil(t, state.ActiveServerId)
}
