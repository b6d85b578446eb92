// Implements the JobQueue, which holds the jobs waiting at a station.
// Jobs are enqueued on arrival and served first-come-first-served.

package sim

import (
	"fmt"
	"strings"
)

// JobQueue is a FIFO queue of job IDs waiting for a free server.
type JobQueue struct {
	queue []int // FIFO queue of job IDs
}

// Enqueue adds a job to the back of the queue.
func (jq *JobQueue) Enqueue(jobID int) {
	jq.queue = append(jq.queue, jobID)
}

func (jq *JobQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, id := range jq.queue {
		sb.WriteString(fmt.Sprint(id))
		if i < len(jq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of jobs in the queue.
func (jq *JobQueue) Len() int {
	return len(jq.queue)
}

// Peek returns the job at the front of the queue without removing it.
func (jq *JobQueue) Peek() (int, bool) {
	if len(jq.queue) == 0 {
		return 0, false
	}
	return jq.queue[0], true
}

// Items returns the queue contents, head first.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (jq *JobQueue) Items() []int {
	return jq.queue
}

// Dequeue removes the job at the front of the queue.
func (jq *JobQueue) Dequeue() (int, bool) {
	if len(jq.queue) == 0 {
		return 0, false
	}
	id := jq.queue[0]
	jq.queue = jq.queue[1:]
	return id, true
}
