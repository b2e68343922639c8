package service

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/fastmakeup/final-ver/model"
)

// ProjectStore keeps analysis jobs in memory, keyed by project id.
// Re-analyzing a folder replaces the job under the same key; writes
// from the replaced job's background goroutine are rejected by pointer
// identity so a stale task can never overwrite fresh results.
type ProjectStore struct {
	mu          sync.RWMutex
	jobs        map[string]*model.AnalysisJob
	maxProjects int
}

func NewProjectStore(maxProjects int) *ProjectStore {
	return &ProjectStore{
		jobs:        make(map[string]*model.AnalysisJob),
		maxProjects: maxProjects,
	}
}

// Begin registers a new job for the project, replacing any previous
// one, and returns it. Oldest jobs are evicted once the store is full.
func (s *ProjectStore) Begin(projectID string, snapshot *model.ProjectSnapshot) *model.AnalysisJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	job := &model.AnalysisJob{
		ProjectID: projectID,
		State:     model.JobPending,
		Snapshot:  snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[projectID] = job
	s.cleanupIfNeeded()
	return job
}

// Get returns the current job for the project, or nil.
func (s *ProjectStore) Get(projectID string) *model.AnalysisJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[projectID]
}

// SetState moves the job to the given state. It reports false when the
// job has been superseded by a newer one for the same project.
func (s *ProjectStore) SetState(job *model.AnalysisJob, state string, errorMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[job.ProjectID] != job {
		return false
	}
	job.State = state
	job.ErrorMsg = errorMsg
	job.UpdatedAt = time.Now()
	return true
}

// SetRemoteTask records the remote task id on the job.
func (s *ProjectStore) SetRemoteTask(job *model.AnalysisJob, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[job.ProjectID] != job {
		return false
	}
	job.RemoteTaskID = taskID
	job.UpdatedAt = time.Now()
	return true
}

// UpdateSnapshot replaces the job's snapshot, typically after merging
// in remote results.
func (s *ProjectStore) UpdateSnapshot(job *model.AnalysisJob, snapshot *model.ProjectSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jobs[job.ProjectID] != job {
		return false
	}
	job.Snapshot = snapshot
	job.UpdatedAt = time.Now()
	return true
}

// SnapshotJSON marshals the project's snapshot while holding the read
// lock, so callers never see a snapshot torn by a concurrent merge.
func (s *ProjectStore) SnapshotJSON(projectID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[projectID]
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(job.Snapshot)
	if err != nil {
		slog.Error("marshal snapshot", "project_id", projectID, "error", err)
		return nil, false
	}
	return data, true
}

type projectListEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FileCount int    `json:"fileCount"`
	Warnings  int    `json:"warnings"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ListJSON marshals a summary of all stored projects, newest first.
func (s *ProjectStore) ListJSON() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]projectListEntry, 0, len(s.jobs))
	for _, job := range s.jobs {
		entry := projectListEntry{
			ID:        job.ProjectID,
			Status:    job.State,
			CreatedAt: job.CreatedAt.Format(time.RFC3339),
		}
		if job.Snapshot != nil {
			entry.Name = job.Snapshot.Name
			entry.FileCount = job.Snapshot.FileCount
			entry.Warnings = job.Snapshot.Warnings
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt > entries[j].CreatedAt
	})

	data, err := json.Marshal(map[string]any{"projects": entries})
	if err != nil {
		slog.Error("marshal project list", "error", err)
		return []byte(`{"projects":[]}`)
	}
	return data
}

// StatusJSON marshals the project's job state for status polling.
// Completed jobs carry the merged snapshot along so the caller can
// skip a second fetch.
func (s *ProjectStore) StatusJSON(projectID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[projectID]
	if !ok {
		return nil, false
	}

	payload := map[string]any{
		"projectId": job.ProjectID,
		"status":    job.State,
		"updatedAt": job.UpdatedAt.Format(time.RFC3339),
	}
	if job.ErrorMsg != "" {
		payload["error"] = job.ErrorMsg
	}
	if job.State == model.JobDone && job.Snapshot != nil {
		payload["project"] = job.Snapshot
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal job status", "project_id", projectID, "error", err)
		return nil, false
	}
	return data, true
}

// Count returns the number of stored projects.
func (s *ProjectStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// cleanupIfNeeded evicts the oldest jobs when the store exceeds its
// limit. Caller must hold the write lock.
func (s *ProjectStore) cleanupIfNeeded() {
	if s.maxProjects <= 0 || len(s.jobs) <= s.maxProjects {
		return
	}

	type aged struct {
		id        string
		createdAt time.Time
	}
	all := make([]aged, 0, len(s.jobs))
	for id, job := range s.jobs {
		all = append(all, aged{id: id, createdAt: job.CreatedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})

	excess := len(s.jobs) - s.maxProjects
	for i := 0; i < excess; i++ {
		delete(s.jobs, all[i].id)
		slog.Info("evicted old project", "project_id", all[i].id)
	}
}
