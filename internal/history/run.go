package history

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one invocation of the train or predict flow.
type Run struct {
	ID        string
	Action    string
	Status    RunStatus
	StartTime time.Time
	EndTime   *time.Time
	TrainPath string
	TestPath  string
	ModelPath string
	Accuracy  float64
	AUC       float64
	F1Score   float64
	Error     string
}

func NewRun(action string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Action:    action,
		Status:    RunPending,
		StartTime: time.Now().UTC(),
	}
}

func (r *Run) SetStatus(status RunStatus) {
	r.Status = status
	if status == RunCompleted || status == RunFailed {
		now := time.Now().UTC()
		r.EndTime = &now
	}
}

func (r *Run) SetError(err error) {
	if err != nil {
		r.Error = err.Error()
	}
	r.SetStatus(RunFailed)
}

func (r *Run) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
