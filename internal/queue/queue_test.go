package queue

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueFullAndClosed(t *testing.T) {
	q := NewJobQueue(1)

	require.NoError(t, q.Enqueue(&WorkflowJob{Kind: WorkflowConnect, ServerID: "s1"}))
	assert.Equal(t, 1, q.Len())
	assert.ErrorIs(t, q.Enqueue(&WorkflowJob{Kind: WorkflowConnect, ServerID: "s2"}), ErrQueueFull)

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(&WorkflowJob{Kind: WorkflowRemove, ServerID: "s1"}), ErrQueueClosed)
}

func TestEnqueueStampsTime(t *testing.T) {
	q := NewJobQueue(1)
	job := &WorkflowJob{Kind: WorkflowSendMessage, Text: "hi"}

	require.NoError(t, q.Enqueue(job))
	assert.False(t, job.EnqueuedAt.IsZero())
}

func TestWorkerPoolDrainsQueueOnClose(t *testing.T) {
	q := NewJobQueue(10)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(&WorkflowJob{Kind: WorkflowSendMessage, Text: "msg"}))
	}
	require.NoError(t, q.Enqueue(&WorkflowJob{Kind: WorkflowConnect, ServerID: "bad"}))

	var mu sync.Mutex
	var handled []WorkflowKind
	pool := NewWorkerPool(q, 3)
	pool.Start(func(job *WorkflowJob) error {
		mu.Lock()
		handled = append(handled, job.Kind)
		mu.Unlock()
		if job.ServerID == "bad" {
			return errors.New("server not found")
		}
		return nil
	})

	q.Close()
	pool.Wait()

	assert.Len(t, handled, 6)
}
