package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// eventBuffer is the per-subscriber channel capacity. A subscriber that
// falls further behind than this starts losing events.
const eventBuffer = 10

// ssePingInterval is how often an idle SSE connection receives a comment
// line to keep intermediaries from closing it.
const ssePingInterval = 30 * time.Second

// ProgressEvent is one progress sample of a running search, as delivered
// to SSE subscribers.
type ProgressEvent struct {
	JobID       string    `json:"jobId"`
	State       JobState  `json:"state"`
	Iterations  int       `json:"iterations"`
	BestCost    float64   `json:"bestCost"`
	CurrentCost float64   `json:"currentCost"`
	Improvement float64   `json:"improvement"`
	IPS         float64   `json:"ips"`
	Timestamp   time.Time `json:"timestamp"`
}

// progressEvent assembles a ProgressEvent from a job snapshot. Improvement
// is only meaningful once an initial cost is known.
func progressEvent(job *Job, ips float64) ProgressEvent {
	improvement := 0.0
	if job.InitialCost > 0 && job.BestCost > 0 {
		improvement = job.InitialCost - job.BestCost
	}
	return ProgressEvent{
		JobID:       job.ID,
		State:       job.State,
		Iterations:  job.Iterations,
		BestCost:    job.BestCost,
		CurrentCost: job.CurrentCost,
		Improvement: improvement,
		IPS:         ips,
		Timestamp:   time.Now(),
	}
}

// EventBroadcaster fans progress events out to the SSE subscribers of each
// job. It remembers the last event per job so a reconnecting client
// immediately sees the current state.
type EventBroadcaster struct {
	mu          sync.Mutex
	subscribers map[string]map[chan ProgressEvent]struct{}
	lastEvent   map[string]ProgressEvent
}

// NewEventBroadcaster creates an empty event broadcaster.
func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{
		subscribers: make(map[string]map[chan ProgressEvent]struct{}),
		lastEvent:   make(map[string]ProgressEvent),
	}
}

// Subscribe registers a new subscriber for a job and returns its event
// channel. If the job has already produced an event, it is replayed so the
// subscriber does not start blind.
func (eb *EventBroadcaster) Subscribe(jobID string) chan ProgressEvent {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan ProgressEvent, eventBuffer)

	if eb.subscribers[jobID] == nil {
		eb.subscribers[jobID] = make(map[chan ProgressEvent]struct{})
	}
	eb.subscribers[jobID][ch] = struct{}{}

	if last, ok := eb.lastEvent[jobID]; ok {
		ch <- last // freshly made channel, cannot block
	}

	slog.Debug("SSE client subscribed", "jobID", jobID, "subscribers", len(eb.subscribers[jobID]))
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (eb *EventBroadcaster) Unsubscribe(jobID string, ch chan ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs, ok := eb.subscribers[jobID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		// Already closed by CleanupJob.
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(eb.subscribers, jobID)
	}

	slog.Debug("SSE client unsubscribed", "jobID", jobID)
}

// Broadcast delivers an event to every subscriber of its job. Slow
// subscribers are skipped rather than blocking the worker. Broadcast is
// called concurrently by the monitor goroutines of independent jobs, so it
// takes the write lock for the lastEvent update.
func (eb *EventBroadcaster) Broadcast(event ProgressEvent) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.lastEvent[event.JobID] = event

	subs := eb.subscribers[event.JobID]
	if len(subs) == 0 {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
			slog.Warn("SSE subscriber too slow, dropping event", "jobID", event.JobID)
		}
	}
}

// CleanupJob closes all subscriber channels of a job and drops its cached
// event. Events already queued on a channel are still drained by the
// subscriber before it observes the close.
func (eb *EventBroadcaster) CleanupJob(jobID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for ch := range eb.subscribers[jobID] {
		close(ch)
	}
	delete(eb.subscribers, jobID)
	delete(eb.lastEvent, jobID)

	slog.Debug("Cleaned up SSE resources", "jobID", jobID)
}

// handleJobStream handles GET /api/v1/jobs/:id/stream as an SSE stream of
// progress events, terminated by client disconnect or job cleanup.
func (s *Server) handleJobStream(w http.ResponseWriter, r *http.Request, jobID string) {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	eventChan := s.jobManager.broadcaster.Subscribe(jobID)
	defer s.jobManager.broadcaster.Unsubscribe(jobID, eventChan)

	// The current state opens the stream; broadcasts follow.
	if err := writeSSEEvent(w, progressEvent(job, 0)); err != nil {
		slog.Error("Failed to write initial SSE event", "error", err)
		return
	}
	flusher.Flush()

	pingTicker := time.NewTicker(ssePingInterval)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("SSE client disconnected", "jobID", jobID)
			return

		case event, ok := <-eventChan:
			if !ok {
				// Job cleaned up, stream is over.
				return
			}
			if err := writeSSEEvent(w, event); err != nil {
				slog.Error("Failed to write SSE event", "error", err)
				return
			}
			flusher.Flush()

		case <-pingTicker.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one event in "data: {json}\n\n" form.
func writeSSEEvent(w http.ResponseWriter, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
