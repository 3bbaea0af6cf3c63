package distribution_service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus distribution job lifecycle
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobSuccess JobStatus = "success"
	JobFailed  JobStatus = "failed"
)

// finished jobs are kept this long for status polling
const jobRetention = 24 * time.Hour

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrInvalidPlan      = errors.New("recipient list is not valid")
	ErrSignerNotEnabled = errors.New("server-side distribution is not enabled")
)

// Job one asynchronous distribution run
type Job struct {
	ID               string    `json:"jobId"`
	Status           JobStatus `json:"status"`
	Mode             Mode      `json:"mode"`
	Recipients       int       `json:"recipients"`
	BatchesTotal     int       `json:"batchesTotal"`
	BatchesSubmitted int       `json:"batchesSubmitted"`
	TxHashes         []string  `json:"txHashes"`
	LastTxHash       string    `json:"lastTxHash,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (j *Job) snapshot() *Job {
	cp := *j
	cp.TxHashes = append([]string(nil), j.TxHashes...)
	return &cp
}

// JobManager runs distributions in the background and tracks their progress
type JobManager struct {
	distributor *Distributor

	mu     sync.Mutex
	jobs   map[string]*Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewJobManager create job manager; distributor nil disables Start
func NewJobManager(distributor *Distributor) *JobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		distributor: distributor,
		jobs:        make(map[string]*Job),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Enabled reports whether a signer is available for runs
func (m *JobManager) Enabled() bool {
	return m.distributor != nil
}

// Start queue a run of plan and return its pending job
func (m *JobManager) Start(plan *ParseResult) (*Job, error) {
	if m.distributor == nil {
		return nil, ErrSignerNotEnabled
	}
	if plan == nil || !plan.Valid {
		return nil, ErrInvalidPlan
	}

	now := time.Now()
	job := &Job{
		ID:           uuid.NewString(),
		Status:       JobPending,
		Mode:         plan.Mode,
		Recipients:   len(plan.Recipients),
		BatchesTotal: m.distributor.TotalBatches(len(plan.Recipients)),
		TxHashes:     []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	m.mu.Lock()
	m.pruneLocked(now)
	m.jobs[job.ID] = job
	snap := job.snapshot()
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(job, plan)
	return snap, nil
}

func (m *JobManager) update(job *Job, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(job)
	job.UpdatedAt = time.Now()
}

func (m *JobManager) run(job *Job, plan *ParseResult) {
	defer m.wg.Done()
	m.update(job, func(j *Job) { j.Status = JobRunning })
	log.Printf("[distribution] job %s started: %d recipients in %d batches", job.ID, job.Recipients, job.BatchesTotal)

	result, err := m.distributor.Run(m.ctx, plan, func(p BatchProgress) {
		m.update(job, func(j *Job) {
			j.BatchesSubmitted = p.Batch
			j.TxHashes = append(j.TxHashes, p.TxHash)
			j.LastTxHash = p.TxHash
		})
	})

	m.update(job, func(j *Job) {
		if err != nil {
			j.Status = JobFailed
			j.Error = err.Error()
			return
		}
		j.Status = JobSuccess
		j.LastTxHash = result.LastHash
	})
	if err != nil {
		log.Printf("⚠️  [distribution] job %s failed: %v", job.ID, err)
		return
	}
	log.Printf("✅ [distribution] job %s finished, last tx %s", job.ID, result.LastHash)
}

// Get job snapshot by id
func (m *JobManager) Get(id string) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.snapshot(), nil
}

func (m *JobManager) pruneLocked(now time.Time) {
	for id, j := range m.jobs {
		done := j.Status == JobSuccess || j.Status == JobFailed
		if done && now.Sub(j.UpdatedAt) > jobRetention {
			delete(m.jobs, id)
		}
	}
}

// Close cancel running jobs between batches and wait for them
func (m *JobManager) Close() {
	m.cancel()
	m.wg.Wait()
}
