// Package chunker drives a single chunking request from form input to a
// displayable, exportable result.
package chunker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Zachkp/zach-dev-chunker/internal/chunkservice"
	"github.com/Zachkp/zach-dev-chunker/internal/connectivity"
	"github.com/Zachkp/zach-dev-chunker/internal/logger"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// DefaultTimeout bounds a single chunk-text call.
const DefaultTimeout = 30 * time.Second

// State is a snapshot of everything the chunker view renders.
type State struct {
	Config       Config
	Connectivity connectivity.Status
	Phase        Phase
	Result       *Result
	Error        string
}

type ChunkingService interface {
	ChunkText(ctx context.Context, req chunkservice.Request) (*chunkservice.Response, error)
}

// StatusSource reports the current reachability of the service.
type StatusSource interface {
	Status() connectivity.Status
}

// Recorder observes settled submissions.
type Recorder interface {
	ChunkSettled(outcome string, elapsed time.Duration)
}

type Options struct {
	Timeout  time.Duration
	Recorder Recorder
}

type Orchestrator struct {
	service  ChunkingService
	status   StatusSource
	timeout  time.Duration
	recorder Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	generation uint64
	inflight   context.CancelFunc
	closed     bool
	onChange   func(State)
}

func New(service ChunkingService, status StatusSource, opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		service:  service,
		status:   status,
		timeout:  opts.Timeout,
		recorder: opts.Recorder,
		ctx:      ctx,
		cancel:   cancel,
		state: State{
			Config: DefaultConfig(),
			Phase:  PhaseIdle,
		},
	}
}

// OnChange registers fn to receive a snapshot after every transition. fn runs
// with the orchestrator locked and must not call back into it.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Submit validates the current config and, when it passes, sends it to the
// chunking service in the background. The returned channel is closed once
// the submission has settled into success or error. Validation failures
// settle before Submit returns.
//
// ctx only supplies request-scoped values such as the logger; the call
// itself lives as long as the orchestrator, bounded by the configured timeout.
func (o *Orchestrator) Submit(ctx context.Context) (<-chan struct{}, error) {
	log := logger.FromContext(ctx)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrClosed
	}
	if o.state.Phase == PhaseSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	cfg := o.state.Config
	var invalid error
	switch {
	case strings.TrimSpace(cfg.InputText) == "":
		invalid = &ValidationError{Message: msgEmptyInput}
	case o.status.Status() != connectivity.Connected:
		invalid = &ValidationError{Message: msgNotConnected}
	}
	if invalid != nil {
		msg, outcome := describe(invalid)
		o.state.Phase = PhaseError
		o.state.Error = msg
		o.settleLocked(outcome, 0)
		o.mu.Unlock()
		log.Info("chunk request rejected", "reason", msg)
		done := make(chan struct{})
		close(done)
		return done, nil
	}

	maxChars := CoerceMaxChars(cfg.MaxChars)
	o.state.Config.MaxChars = strconv.Itoa(maxChars)
	o.state.Result = nil
	o.state.Error = ""
	o.state.Phase = PhaseSubmitting
	o.generation++
	gen := o.generation

	reqCtx, cancel := context.WithTimeout(o.ctx, o.timeout)
	reqCtx = logger.ContextWithLogger(reqCtx, log)
	o.inflight = cancel

	req := chunkservice.Request{
		Text:            cfg.InputText,
		MaxChars:        maxChars,
		CleanTranscript: cfg.CleanTranscript,
		Method:          string(cfg.Method),
	}
	o.publishLocked()
	o.mu.Unlock()

	log.Info("chunk request submitted",
		"chars", len(cfg.InputText), "max_chars", maxChars, "method", cfg.Method, "clean", cfg.CleanTranscript)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		o.run(reqCtx, gen, req, cfg.Method)
	}()
	return done, nil
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, req chunkservice.Request, method Method) {
	log := logger.FromContext(ctx)

	start := time.Now()
	resp, err := o.service.ChunkText(ctx, req)
	elapsed := time.Since(start)

	var result *Result
	switch {
	case err != nil:
	case resp == nil:
		err = &chunkservice.FormatError{Reason: "empty response"}
	case len(resp.Chunks) > MaxChunks:
		err = &VolumeGuardError{NumChunks: len(resp.Chunks)}
	default:
		result = NewResult(resp.Chunks, resp.OriginalLength, resp.CleanedLength, req.MaxChars, method)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || gen != o.generation {
		log.Debug("discarding superseded chunk response", "generation", gen)
		return
	}
	o.inflight = nil

	if err != nil {
		msg, outcome := describe(err)
		log.Warn("chunk request failed", "outcome", outcome, "error", err, "elapsed", elapsed)
		o.state.Phase = PhaseError
		o.state.Error = msg
		o.settleLocked(outcome, elapsed)
		return
	}

	log.Info("chunk request succeeded", "chunks", result.NumChunks, "elapsed", elapsed)
	o.state.Phase = PhaseSuccess
	o.state.Result = result
	o.settleLocked("success", elapsed)
}

// Edit replaces the input text and returns to idle, discarding any result or
// error. An outstanding request is abandoned.
func (o *Orchestrator) Edit(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.state.Config.InputText = text
	o.resetLocked()
}

// Clear empties the input text; settings are kept.
func (o *Orchestrator) Clear() {
	o.Edit("")
}

// UpdateSettings applies the settings panel. maxChars is coerced right away
// and the corrected value becomes the visible one.
func (o *Orchestrator) UpdateSettings(maxChars string, method Method, cleanTranscript bool) error {
	if _, ok := ParseMethod(string(method)); !ok {
		return fmt.Errorf("unknown chunking method %q", method)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if o.state.Phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}
	o.state.Config.MaxChars = strconv.Itoa(CoerceMaxChars(maxChars))
	o.state.Config.Method = method
	o.state.Config.CleanTranscript = cleanTranscript
	o.publishLocked()
	return nil
}

// Close tears the orchestrator down. Outstanding requests are cancelled and
// their responses ignored.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.cancel()
}

func (o *Orchestrator) resetLocked() {
	if o.state.Phase == PhaseSubmitting {
		o.generation++
		if o.inflight != nil {
			o.inflight()
			o.inflight = nil
		}
	}
	o.state.Phase = PhaseIdle
	o.state.Result = nil
	o.state.Error = ""
	o.publishLocked()
}

func (o *Orchestrator) settleLocked(outcome string, elapsed time.Duration) {
	if o.recorder != nil {
		o.recorder.ChunkSettled(outcome, elapsed)
	}
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	if o.onChange != nil {
		o.onChange(o.snapshotLocked())
	}
}

func (o *Orchestrator) snapshotLocked() State {
	s := o.state
	s.Connectivity = o.status.Status()
	return s
}
