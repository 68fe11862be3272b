// Package transcribe drives an asynchronous speech-to-text job through
// submit, poll and fetch until it completes, fails or times out.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

var (
	ErrTranscriptionFailed  = errors.New("transcription failed")
	ErrTranscriptionTimeout = errors.New("transcription timed out")
	ErrTranscriptionBusy    = errors.New("transcription capacity exhausted")
)

const (
	DEFAULT_POLL_INTERVAL = 5 * time.Second
	DEFAULT_TIMEOUT       = 120 * time.Second
)

type State int

const (
	NotStarted State = iota
	Submitted
	Polling
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Submitted:
		return "submitted"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "not_started"
	}
}

type JobState int

const (
	JobRunning JobState = iota
	JobCompleted
	JobFailed
)

type JobHandle struct {
	Name string
}

type Status struct {
	State         JobState
	TranscriptURI string
	Reason        string
}

type Transcript struct {
	Text          string
	LanguageCodes []string
}

type Provider interface {
	Submit(ctx context.Context, jobName, sourceURL, formatHint string) (JobHandle, error)
	Poll(ctx context.Context, handle JobHandle) (Status, error)
	// Delete returns nil when the job was removed or never existed.
	Delete(ctx context.Context, jobName string) error
	Fetch(ctx context.Context, transcriptURI string) (Transcript, error)
}

// Gate bounds how many jobs run at once across processes.
type Gate interface {
	TryAcquire(ctx context.Context) bool
	Release(ctx context.Context)
}

type Observer func(jobName string, from, to State)

type Config struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

type Transcriber struct {
	provider Provider
	gate     Gate
	observer Observer
	cfg      Config
}

type Option func(*Transcriber)

func WithGate(g Gate) Option {
	return func(t *Transcriber) {
		t.gate = g
	}
}

func WithObserver(o Observer) Option {
	return func(t *Transcriber) {
		t.observer = o
	}
}

func New(provider Provider, cfg Config, opts ...Option) *Transcriber {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DEFAULT_TIMEOUT
	}
	t := &Transcriber{
		provider: provider,
		cfg:      cfg,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

type job struct {
	name  string
	state State
	t     *Transcriber
}

func (j *job) to(next State) {
	prev := j.state
	j.state = next
	slog.Debug("transcription state changed", slog.String("job", j.name), slog.String("from", prev.String()), slog.String("to", next.String()))
	if j.t.observer != nil {
		j.t.observer(j.name, prev, next)
	}
}

func (j *job) fail(err error) error {
	j.to(Failed)
	return err
}

// Transcribe runs jobName to completion. Any previous job with the same name
// is deleted first so that retries never leave duplicates behind.
func (t *Transcriber) Transcribe(ctx context.Context, jobName, sourceURL, formatHint string) (ai.Extraction, error) {
	if t.gate != nil {
		if !t.gate.TryAcquire(ctx) {
			return ai.Extraction{}, ErrTranscriptionBusy
		}
		defer t.gate.Release(context.WithoutCancel(ctx))
	}

	j := &job{name: jobName, state: NotStarted, t: t}

	if err := t.provider.Delete(ctx, jobName); err != nil {
		return ai.Extraction{}, j.fail(fmt.Errorf("%w: delete previous job: %w", ErrTranscriptionFailed, err))
	}

	handle, err := t.provider.Submit(ctx, jobName, sourceURL, formatHint)
	if err != nil {
		return ai.Extraction{}, j.fail(fmt.Errorf("%w: submit: %w", ErrTranscriptionFailed, err))
	}
	j.to(Submitted)

	status, err := t.wait(ctx, j, handle)
	if err != nil {
		return ai.Extraction{}, j.fail(err)
	}

	transcript, err := t.provider.Fetch(ctx, status.TranscriptURI)
	if err != nil {
		return ai.Extraction{}, j.fail(fmt.Errorf("%w: fetch transcript: %w", ErrTranscriptionFailed, err))
	}
	if len(transcript.LanguageCodes) == 0 {
		if lang := utils.WhatLang(transcript.Text); lang != "" {
			transcript.LanguageCodes = []string{lang}
		}
	}
	j.to(Completed)

	meta := map[string]any{
		"extractor":      "transcribe",
		"job_name":       jobName,
		"language_codes": transcript.LanguageCodes,
	}
	if len(transcript.LanguageCodes) > 0 {
		meta["language"] = transcript.LanguageCodes[0]
	}
	return ai.Extraction{
		Text: utils.CleanText(transcript.Text),
		Meta: meta,
	}, nil
}

func (t *Transcriber) wait(ctx context.Context, j *job, handle JobHandle) (Status, error) {
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(t.cfg.Timeout)
	defer deadline.Stop()

	j.to(Polling)
	for {
		select {
		case <-ctx.Done():
			return Status{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, ctx.Err())
		case <-deadline.C:
			return Status{}, fmt.Errorf("%w after %s", ErrTranscriptionTimeout, t.cfg.Timeout)
		case <-ticker.C:
		}

		status, err := t.provider.Poll(ctx, handle)
		if err != nil {
			// transient, retried until the deadline
			slog.Warn("failed to poll transcription job", slog.String("job", j.name), slog.String("error", err.Error()))
			continue
		}

		switch status.State {
		case JobCompleted:
			return status, nil
		case JobFailed:
			return status, fmt.Errorf("%w: %s", ErrTranscriptionFailed, status.Reason)
		}
	}
}
