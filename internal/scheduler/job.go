package scheduler

import (
	"time"
)

// State of restoration job
type State int

// Job states
const (
	Pending State = iota
	Fired
	Abandoned
)

// String returns state name
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Job restores member roles snapshotted when timeout was applied
type Job struct {
	ID            string    `json:"id"`
	GuildID       string    `json:"guild_id"`
	MemberID      string    `json:"member_id"`
	MemberName    string    `json:"member_name"`
	TimeoutRoleID string    `json:"timeout_role_id"`
	Snapshot      []string  `json:"snapshot"`
	CreatedAt     time.Time `json:"created_at"`
	FireAt        time.Time `json:"fire_at"`
	State         State     `json:"-"`
	Err           error     `json:"-"`

	index int
}

// Copy returns detached copy of the job
func (job *Job) Copy() Job {
	c := *job
	c.Snapshot = append([]string(nil), job.Snapshot...)
	c.index = -1

	return c
}

type queue []*Job

func (q queue) Len() int {
	return len(q)
}

func (q queue) Less(i, j int) bool {
	if q[i].FireAt.Equal(q[j].FireAt) {
		return q[i].CreatedAt.Before(q[j].CreatedAt)
	}

	return q[i].FireAt.Before(q[j].FireAt)
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x interface{}) {
	job := x.(*Job)
	job.index = len(*q)
	*q = append(*q, job)
}

func (q *queue) Pop() interface{} {
	old := *q
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	job.index = -1
	*q = old[:n-1]

	return job
}

func (q queue) peek() *Job {
	if len(q) == 0 {
		return nil
	}

	return q[0]
}
