package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/logging"
)

// HistoryLimit caps the number of remembered verifications.
const HistoryLimit = 50

// SerialHint is the canonical serial layout, shown to users as guidance.
// Serials are never validated against it. The literal serial "stats" shares
// its URL with the statistics route and cannot be looked up.
const SerialHint = "PREFIX-YYYYMMDDHHMMSS-XXXX-XXXX-XXXXXXXX"

// ErrSuperseded is returned when a newer request of the same kind was issued
// while this one was in flight. Its result has been discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// VerifyAPI is the part of the backend the verifier talks to.
type VerifyAPI interface {
	Verify(ctx context.Context, serial string) (*models.VerificationResult, error)
	Stats(ctx context.Context) (*models.ScanStats, error)
}

// Verifier runs verification requests and keeps the current result, a
// newest-first history of successful lookups and the last stats snapshot.
//
// Only the most recently issued Verify (and FetchStats) call may change
// state; responses of older calls are dropped.
type Verifier struct {
	api VerifyAPI
	log logging.Logger
	now func() time.Time

	mu        sync.RWMutex
	current   *models.VerificationResult
	history   []models.VerificationResult
	stats     *models.ScanStats
	verifySeq uint64
	statsSeq  uint64
}

func NewVerifier(api VerifyAPI, log logging.Logger) *Verifier {
	if log == nil {
		log = logging.Discard()
	}
	return &Verifier{api: api, log: log.With("component", "verifier"), now: time.Now}
}

// Verify looks serial up on the server. A server answer (valid or not)
// becomes the current result and is added to the history. A failed request
// replaces the current result with a synthesized invalid one, leaves the
// history alone and returns the error along with it.
func (v *Verifier) Verify(ctx context.Context, serial string) (models.VerificationResult, error) {
	if strings.TrimSpace(serial) == "" {
		return models.VerificationResult{}, client.NewValidationError("Please enter a serial number.")
	}

	v.mu.Lock()
	v.verifySeq++
	seq := v.verifySeq
	v.mu.Unlock()

	res, err := v.api.Verify(ctx, serial)
	if err == nil && res == nil {
		err = &client.Error{Kind: client.KindUnknown, Message: "The server returned an empty response."}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.verifySeq {
		v.log.Debug(ctx, "stale verification dropped", "serial", serial)
		if err != nil {
			return models.VerificationResult{}, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		return models.VerificationResult{}, ErrSuperseded
	}

	if err != nil {
		failed := models.VerificationResult{
			SerialNumber: serial,
			IsValid:      false,
			Error:        client.DisplayMessage(err),
			ScannedAt:    v.now(),
		}
		v.current = &failed
		return failed, fmt.Errorf("verify %q: %w", serial, err)
	}

	r := cloneResult(*res)
	if r.ScannedAt.IsZero() {
		r.ScannedAt = v.now()
	}
	cur := cloneResult(r)
	v.current = &cur

	v.history = append(v.history, models.VerificationResult{})
	copy(v.history[1:], v.history)
	v.history[0] = cloneResult(r)
	if len(v.history) > HistoryLimit {
		clear(v.history[HistoryLimit:])
		v.history = v.history[:HistoryLimit]
	}
	return r, nil
}

// cloneResult copies r including its certificate, so stored results never
// share memory with values handed to callers.
func cloneResult(r models.VerificationResult) models.VerificationResult {
	if r.Certificate != nil {
		c := *r.Certificate
		if c.ExpiresAt != nil {
			exp := *c.ExpiresAt
			c.ExpiresAt = &exp
		}
		r.Certificate = &c
	}
	return r
}

// FetchStats replaces the stats snapshot. Errors are logged and the previous
// snapshot is kept.
func (v *Verifier) FetchStats(ctx context.Context) {
	v.mu.Lock()
	v.statsSeq++
	seq := v.statsSeq
	v.mu.Unlock()

	stats, err := v.api.Stats(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.statsSeq {
		return
	}
	if err == nil && stats == nil {
		err = errors.New("empty stats response")
	}
	if err != nil {
		v.log.Warn(ctx, "stats fetch failed", "err", err)
		return
	}
	s := *stats
	v.stats = &s
}

// Current returns the current result; ok is false when there is none.
func (v *Verifier) Current() (models.VerificationResult, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.current == nil {
		return models.VerificationResult{}, false
	}
	return cloneResult(*v.current), true
}

// History returns a copy of the history, newest first.
func (v *Verifier) History() []models.VerificationResult {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.VerificationResult, len(v.history))
	for i, r := range v.history {
		out[i] = cloneResult(r)
	}
	return out
}

func (v *Verifier) Stats() (models.ScanStats, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.stats == nil {
		return models.ScanStats{}, false
	}
	return *v.stats, true
}

// Status is derived from the current result.
func (v *Verifier) Status() models.VerificationStatus {
	cur, ok := v.Current()
	if !ok {
		return models.StatusNone
	}
	return cur.Status()
}

// VerificationRate is the rounded percentage of verified scans, 0 when
// nothing was scanned or no snapshot exists.
func (v *Verifier) VerificationRate() int {
	s, ok := v.Stats()
	if !ok || s.TotalScans <= 0 {
		return 0
	}
	return int(math.Round(float64(s.VerifiedScans) / float64(s.TotalScans) * 100))
}

func (v *Verifier) ClearCurrent() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = nil
}

func (v *Verifier) ClearHistory() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = nil
}

// Reset forgets everything, including the stats snapshot. In-flight calls
// issued before Reset are dropped when they return.
func (v *Verifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = nil
	v.history = nil
	v.stats = nil
	v.verifySeq++
	v.statsSeq++
}
