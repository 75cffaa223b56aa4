package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/finsight/internal/pipeline"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeStatement represents a statement analysis job.
	JobTypeAnalyzeStatement JobType = "analyze_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are not retried.
	JobStatusFailed JobStatus = "failed"
)

// ErrJobNotFound is returned for unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// AnalyzeStatementJob represents one submission waiting for the analyzer.
type AnalyzeStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// SessionID is the session that receives the result.
	SessionID string `json:"session_id"`

	// Input is the submitted statement. It is not serialized.
	Input pipeline.StatementInput `json:"-"`

	// MIMEType of the attachment, empty for text submissions.
	MIMEType string `json:"mime_type,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *AnalyzeStatementJob) GetID() string {
	return j.JobID
}

func (j *AnalyzeStatementJob) GetType() JobType {
	return JobTypeAnalyzeStatement
}

func (j *AnalyzeStatementJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	PublishAnalyzeStatement(ctx context.Context, job *AnalyzeStatementJob) error
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. A returned error marks the
// job failed.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	SaveJob(ctx context.Context, job *AnalyzeStatementJob) error
	GetJob(ctx context.Context, jobID string) (*AnalyzeStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeStatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	SessionID string
	Status    JobStatus
	Limit     int
	Offset    int
}
