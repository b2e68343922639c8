package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastmakeup/final-ver/config"
	"github.com/fastmakeup/final-ver/core"
	"github.com/fastmakeup/final-ver/decoder"
	"github.com/fastmakeup/final-ver/model"
	"github.com/fastmakeup/final-ver/pkg/logger"
)

// Orchestrator runs the full analysis of a document folder: the local
// extraction pipeline synchronously, then the remote analysis in a
// background goroutine that merges its result into the cached project.
type Orchestrator struct {
	registry *decoder.Registry
	remote   *RemoteClient
	store    *ProjectStore
	archive  *ArchiveService

	startRetries int
	backoff      time.Duration
	pollInterval time.Duration
	maxPolls     int
}

func NewOrchestrator(registry *decoder.Registry, remote *RemoteClient, store *ProjectStore, archive *ArchiveService, cfg *config.AnalysisConfig) *Orchestrator {
	return &Orchestrator{
		registry:     registry,
		remote:       remote,
		store:        store,
		archive:      archive,
		startRetries: cfg.StartRetries,
		backoff:      time.Duration(cfg.BackoffSec) * time.Second,
		pollInterval: time.Duration(cfg.PollIntervalSec) * time.Second,
		maxPolls:     cfg.MaxPolls,
	}
}

// AnalyzeFolder runs the local pipeline over every supported file
// directly under path and returns the resulting snapshot right away.
// The remote phase continues in the background; its outcome is
// observable through the project's job state.
func (o *Orchestrator) AnalyzeFolder(path string) (*model.ProjectSnapshot, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if o.registry.Supported(entry.Name()) {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported documents in %s", path)
	}

	var docs []model.ParsedDocument
	var decoded []string
	for _, p := range paths {
		text, err := o.registry.Decode(p)
		if err != nil {
			slog.Warn("skipping undecodable file", "file", filepath.Base(p), "error", err)
			continue
		}
		docs = append(docs, core.Process(filepath.Base(p), text))
		decoded = append(decoded, p)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no document in %s could be decoded", path)
	}

	validation := core.Validate(docs)
	records := core.Adapt(docs)

	projectID := uuid.New().String()
	snapshot := &model.ProjectSnapshot{
		ID:         projectID,
		Name:       filepath.Base(path),
		FileCount:  len(records),
		Warnings:   len(validation.Warnings) + len(validation.Errors),
		Files:      records,
		Validation: validation,
	}

	job := o.store.Begin(projectID, snapshot)
	slog.Info("local analysis complete",
		"project_id", projectID,
		"files", len(records),
		"warnings", snapshot.Warnings)

	go o.runRemote(job, decoded)

	return snapshot, nil
}

// runRemote drives the remote phase of one analysis job. Every store
// write checks that the job is still current, so a job superseded by a
// re-analysis of the same folder goes quiet instead of clobbering it.
func (o *Orchestrator) runRemote(job *model.AnalysisJob, paths []string) {
	ctx := context.WithValue(context.Background(), logger.ProjectKey, job.ProjectID)

	if !o.store.SetState(job, model.JobAnalyzing, "") {
		return
	}

	if _, err := o.remote.Upload(ctx, paths); err != nil {
		// Remote analysis still has a chance if a previous upload
		// for these files is on the server.
		logger.Warn(ctx, "upload to remote failed", "error", err)
	}

	resp, err := o.startWithRetry(ctx, job)
	if err != nil {
		o.store.SetState(job, model.JobError, err.Error())
		return
	}

	if !resp.Async {
		if resp.Result == nil {
			o.store.SetState(job, model.JobError, "remote returned an empty result")
			return
		}
		o.finish(ctx, job, resp.Result)
		return
	}

	if !o.store.SetRemoteTask(job, resp.TaskID) {
		return
	}
	o.poll(ctx, job, resp.TaskID)
}

// startWithRetry starts the remote analysis, retrying transport
// failures and gateway-class errors with a growing backoff.
func (o *Orchestrator) startWithRetry(ctx context.Context, job *model.AnalysisJob) (*AnalyzeResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= o.startRetries; attempt++ {
		resp, err := o.remote.StartAnalysis(ctx)
		if err == nil {
			if !resp.Success {
				return nil, errors.New("remote rejected the analysis request")
			}
			return resp, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		logger.Warn(ctx, "remote analysis start failed, retrying",
			"attempt", attempt,
			"error", err)
		if attempt < o.startRetries {
			time.Sleep(o.backoff * time.Duration(attempt))
		}
	}
	return nil, fmt.Errorf("remote analysis start failed after %d attempts: %w", o.startRetries, lastErr)
}

// isRetryable reports whether a remote call failure is worth another
// attempt. Transport errors and server or proxy errors are; anything
// the server answered deliberately is not.
func isRetryable(err error) bool {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		// Covers proxy errors like 524 along with ordinary 5xx.
		return httpErr.Code >= 500
	}
	return true
}

// poll watches the remote task until it finishes or the poll budget
// runs out. Individual poll failures are transient and skipped.
func (o *Orchestrator) poll(ctx context.Context, job *model.AnalysisJob, taskID string) {
	for i := 0; i < o.maxPolls; i++ {
		time.Sleep(o.pollInterval)

		status, err := o.remote.TaskStatus(ctx, taskID)
		if err != nil {
			logger.Warn(ctx, "status poll failed",
				"task_id", taskID,
				"error", err)
			continue
		}

		switch status.Status {
		case "done":
			o.finish(ctx, job, status.Result)
			return
		case "error":
			msg := status.Error
			if msg == "" {
				msg = "remote analysis failed"
			}
			o.store.SetState(job, model.JobError, msg)
			return
		}
	}

	o.store.SetState(job, model.JobError, "remote analysis timed out")
}

// finish merges the remote result into the job's snapshot and marks
// the job done.
func (o *Orchestrator) finish(ctx context.Context, job *model.AnalysisJob, result map[string]any) {
	merged := MergeRemoteResult(job.Snapshot, result)
	if !o.store.UpdateSnapshot(job, merged) {
		return
	}
	if !o.store.SetState(job, model.JobDone, "") {
		return
	}
	logger.Info(ctx, "remote analysis merged")

	if o.archive != nil {
		if err := o.archive.PutSnapshot(ctx, merged); err != nil {
			logger.Warn(ctx, "snapshot archive failed", "error", err)
		}
	}
}
