package indexer_service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// RescanTaskStatus represents the status of a rescan task
type RescanTaskStatus string

const (
	RescanStatusIdle      RescanTaskStatus = "idle"
	RescanStatusRunning   RescanTaskStatus = "running"
	RescanStatusCompleted RescanTaskStatus = "completed"
	RescanStatusCancelled RescanTaskStatus = "cancelled"
	RescanStatusFailed    RescanTaskStatus = "failed"
)

var ErrRescanRunning = errors.New("another rescan task is already running")

// RescanTask re-scan of a fixed block range; records already stored are left untouched
type RescanTask struct {
	TaskID          string             `json:"taskId"`
	Chain           string             `json:"chain"`
	Status          RescanTaskStatus   `json:"status"`
	StartHeight     int64              `json:"startHeight"`
	EndHeight       int64              `json:"endHeight"`
	CurrentHeight   int64              `json:"currentHeight"`
	ProcessedBlocks int64              `json:"processedBlocks"`
	TotalBlocks     int64              `json:"totalBlocks"`
	StartTime       time.Time          `json:"startTime"`
	ErrorMessage    string             `json:"errorMessage,omitempty"`
	CancelFunc      context.CancelFunc `json:"-"`
	mu              sync.RWMutex
}

// RescanBlocksAsync rescan [startHeight, endHeight] in the background, returns the task id
func (s *IndexerService) RescanBlocksAsync(startHeight, endHeight int64) (string, error) {
	s.rescanMu.Lock()
	defer s.rescanMu.Unlock()

	if s.currentRescanTask != nil {
		s.currentRescanTask.mu.RLock()
		running := s.currentRescanTask.Status == RescanStatusRunning
		id := s.currentRescanTask.TaskID
		s.currentRescanTask.mu.RUnlock()
		if running {
			return "", fmt.Errorf("%w: %s", ErrRescanRunning, id)
		}
	}
	if s.scanner == nil {
		return "", errors.New("scanner not initialized")
	}
	if startHeight < 0 {
		return "", errors.New("start height must not be negative")
	}
	if endHeight < startHeight {
		return "", errors.New("end height must be greater than or equal to start height")
	}

	chainName := s.opts.ChainName
	taskID := fmt.Sprintf("rescan_%s_%d_%d_%d", chainName, startHeight, endHeight, time.Now().Unix())
	ctx, cancel := context.WithCancel(context.Background())
	task := &RescanTask{
		TaskID:        taskID,
		Chain:         chainName,
		Status:        RescanStatusRunning,
		StartHeight:   startHeight,
		EndHeight:     endHeight,
		CurrentHeight: startHeight,
		TotalBlocks:   endHeight - startHeight + 1,
		StartTime:     time.Now(),
		CancelFunc:    cancel,
	}
	s.currentRescanTask = task

	// The sync height is not touched; progress only updates the task
	progress := func(_ context.Context, toBlock int64) error {
		task.mu.Lock()
		task.CurrentHeight = toBlock
		task.ProcessedBlocks = toBlock - startHeight + 1
		task.mu.Unlock()
		return nil
	}

	go func() {
		defer cancel()
		log.Printf("[Rescan %s] Starting rescan task: %s (height %d to %d)", chainName, taskID, startHeight, endHeight)

		_, err := s.scanner.ScanWindows(ctx, startHeight, endHeight, s.HandleEvent, progress)

		task.mu.Lock()
		defer task.mu.Unlock()
		switch {
		case err == nil:
			task.Status = RescanStatusCompleted
			log.Printf("✅ [Rescan %s] Task completed: %s (%d blocks in %s)", chainName, taskID, task.TotalBlocks, time.Since(task.StartTime).Round(time.Second))
		case ctx.Err() != nil:
			task.Status = RescanStatusCancelled
			log.Printf("[Rescan %s] Task cancelled: %s at height %d", chainName, taskID, task.CurrentHeight)
		default:
			task.Status = RescanStatusFailed
			task.ErrorMessage = err.Error()
			log.Printf("⚠️  [Rescan %s] Task failed: %s: %v", chainName, taskID, err)
		}
	}()

	return taskID, nil
}

// GetRescanStatus snapshot of the current or last rescan task
func (s *IndexerService) GetRescanStatus() *RescanTask {
	s.rescanMu.Lock()
	task := s.currentRescanTask
	s.rescanMu.Unlock()

	if task == nil {
		return &RescanTask{Chain: s.opts.ChainName, Status: RescanStatusIdle}
	}

	task.mu.RLock()
	defer task.mu.RUnlock()
	return &RescanTask{
		TaskID:          task.TaskID,
		Chain:           task.Chain,
		Status:          task.Status,
		StartHeight:     task.StartHeight,
		EndHeight:       task.EndHeight,
		CurrentHeight:   task.CurrentHeight,
		ProcessedBlocks: task.ProcessedBlocks,
		TotalBlocks:     task.TotalBlocks,
		StartTime:       task.StartTime,
		ErrorMessage:    task.ErrorMessage,
	}
}

// StopRescan cancel the running rescan task, if any
func (s *IndexerService) StopRescan() error {
	s.rescanMu.Lock()
	task := s.currentRescanTask
	s.rescanMu.Unlock()

	if task == nil {
		return errors.New("no rescan task")
	}
	task.mu.RLock()
	running := task.Status == RescanStatusRunning
	task.mu.RUnlock()
	if !running {
		return fmt.Errorf("rescan task %s is not running", task.TaskID)
	}
	task.CancelFunc()
	log.Printf("[Rescan %s] Stop requested for task %s", task.Chain, task.TaskID)
	return nil
}
