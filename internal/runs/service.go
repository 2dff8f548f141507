package runs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reconcile-backend/internal/citations"
	"reconcile-backend/internal/documents"
	"reconcile-backend/internal/extract"
	"reconcile-backend/internal/extraction"
	"reconcile-backend/internal/matching"
	"reconcile-backend/internal/queue"
	"reconcile-backend/internal/recordstore"
	"reconcile-backend/internal/roles"
	"reconcile-backend/internal/shared/metrics"
	"reconcile-backend/internal/shared/storage/object"
	"reconcile-backend/internal/shared/telemetry"
)

const defaultLockTimeout = 2 * time.Second

// Service drives the reconciliation workflow: extraction, matching, human
// review, and commit, with a durable checkpoint at every state transition.
type Service struct {
	Store       CheckpointStore
	DocRepo     documents.DocumentsRepo
	Objects     object.ObjectStore
	Extractor   extraction.Service
	Records     recordstore.Store
	Citations   citations.Ledger
	Queue       queue.Client
	LockTimeout time.Duration

	locksOnce sync.Once
	locks     *fingerprintLocks
}

func (s *Service) fpLocks() *fingerprintLocks {
	s.locksOnce.Do(func() {
		s.locks = newFingerprintLocks()
	})
	return s.locks
}

func (s *Service) lockTimeout() time.Duration {
	if s.LockTimeout > 0 {
		return s.LockTimeout
	}
	return defaultLockTimeout
}

// Submit starts a reconciliation run for a document. At most one live run
// may exist per document fingerprint: a duplicate submission gets
// ErrDuplicateRun, and one racing an in-flight submission gets
// ErrConcurrentRun. Processing continues asynchronously.
func (s *Service) Submit(ctx context.Context, scope, documentID string) (Run, error) {
	if scope == "" || documentID == "" {
		return Run{}, errors.New("scope and documentID are required")
	}

	doc, err := s.DocRepo.GetByID(ctx, scope, documentID)
	if err != nil {
		return Run{}, err
	}

	if !s.fpLocks().acquire(doc.Fingerprint, s.lockTimeout()) {
		return Run{}, ErrConcurrentRun
	}
	defer s.fpLocks().release(doc.Fingerprint)

	if _, active, err := s.Store.FindActiveByFingerprint(ctx, doc.Fingerprint); err != nil {
		return Run{}, err
	} else if active {
		return Run{}, ErrDuplicateRun
	}

	now := time.Now().UTC()
	run := Run{
		ID:          uuid.NewString(),
		Scope:       scope,
		DocumentID:  doc.ID,
		Fingerprint: doc.Fingerprint,
		State:       StateIngested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Save(ctx, run); err != nil {
		return Run{}, err
	}
	metrics.IncRunSubmitted()
	telemetry.Info("run.submitted", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"scope":       scope,
		"document_id": doc.ID,
		"run_id":      run.ID,
		"fingerprint": doc.Fingerprint,
	})

	if s.Queue != nil {
		msg := queue.Message{
			RunID:      run.ID,
			Scope:      scope,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: now.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			s.fail(ctx, &run, FailureInternal, fmt.Errorf("enqueue run: %w", err))
			return run, nil
		}
		return run, nil
	}

	go s.advanceAsync(backgroundWithRequestID(ctx), scope, run.ID)
	return run, nil
}

// GetRun loads a run within its scope.
func (s *Service) GetRun(ctx context.Context, scope, runID string) (Run, error) {
	if runID == "" {
		return Run{}, errors.New("runID is required")
	}
	return s.Store.Load(ctx, scope, runID)
}

// List returns runs for a scope ordered newest-first.
func (s *Service) List(ctx context.Context, scope string, limit, offset int) ([]Run, error) {
	return s.Store.ListByScope(ctx, scope, limit, offset)
}

func (s *Service) advanceAsync(ctx context.Context, scope, runID string) {
	defer func() {
		if r := recover(); r != nil {
			run, err := s.Store.Load(ctx, scope, runID)
			if err != nil {
				return
			}
			s.fail(ctx, &run, FailureInternal, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.Advance(ctx, scope, runID); err != nil {
		telemetry.Error("run.advance", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"scope":      scope,
			"run_id":     runID,
			"err":        err.Error(),
		})
	}
}

// Advance drives a run forward from its checkpointed state until it either
// suspends at AWAITING_REVIEW or reaches a terminal state. It is safe to
// call again after a crash or a redelivered queue message: runs that are
// already suspended or terminal are left alone, and a run checkpointed at
// COMMITTING is finished from its stored decision.
func (s *Service) Advance(ctx context.Context, scope, runID string) error {
	run, err := s.lockAndReload(ctx, scope, runID)
	if err != nil {
		return err
	}
	defer s.fpLocks().release(run.Fingerprint)

	startedAt := time.Now().UTC()
	for {
		switch run.State {
		case StateIngested:
			if err := s.transition(ctx, &run, StateExtracting); err != nil {
				return err
			}

		case StateExtracting:
			extracted, err := s.runExtraction(ctx, run)
			if err != nil {
				s.fail(ctx, &run, FailureExtraction, err)
				return nil
			}
			run.Extracted = extracted
			if err := s.transition(ctx, &run, StateExtracted); err != nil {
				return err
			}

		case StateExtracted:
			if err := s.transition(ctx, &run, StateMatching); err != nil {
				return err
			}

		case StateMatching:
			existing, err := s.Records.ListByScope(ctx, run.Scope)
			if err != nil {
				s.fail(ctx, &run, FailureRecordStore, fmt.Errorf("list records: %w", err))
				return nil
			}
			candidates, err := matching.Match(ctx, run.Extracted, existing)
			if err != nil {
				s.fail(ctx, &run, FailureInternal, fmt.Errorf("match roles: %w", err))
				return nil
			}
			run.Candidates = candidates

			// A document with no roles has nothing to review or commit.
			next := StateAwaitingReview
			if len(candidates) == 0 {
				next = StateCommitted
			}
			if err := s.transition(ctx, &run, next); err != nil {
				return err
			}
			if next == StateCommitted {
				metrics.IncRunCommitted()
			}
			metrics.ObserveAdvanceDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)

		case StateCommitting:
			// Crash recovery: the reviewer decision was checkpointed with the
			// COMMITTING transition, so the commit can be replayed from it.
			if err := s.finishCommit(ctx, &run); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (s *Service) runExtraction(ctx context.Context, run Run) ([]roles.ExtractedRole, error) {
	if s.DocRepo == nil || s.Objects == nil || s.Extractor == nil {
		return nil, errors.New("missing extraction dependencies")
	}

	doc, err := s.DocRepo.GetByID(ctx, run.Scope, run.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("document lookup id=%s: %w", run.DocumentID, err)
	}

	var text string
	if strings.HasPrefix(doc.MimeType, "text/plain") {
		text, err = loadText(ctx, s.Objects, doc.StorageKey)
	} else {
		text, err = extract.ExtractText(ctx, s.Objects, doc.StorageKey, doc.MimeType, doc.FileName)
	}
	if err != nil {
		return nil, err
	}

	return s.Extractor.ExtractRoles(ctx, extraction.Request{
		DocumentID:  doc.ID,
		Fingerprint: doc.Fingerprint,
		StorageKey:  doc.StorageKey,
		FileName:    doc.FileName,
		MimeType:    doc.MimeType,
		Text:        text,
	})
}

// Resume applies a reviewer decision to a run suspended at AWAITING_REVIEW.
// An all-REJECT decision ends the run without touching the record store.
// Otherwise approved candidates are committed in order; the first failed
// write stops the commit, later candidates are marked not_attempted, and
// the run still ends COMMITTED with per-candidate outcomes.
func (s *Service) Resume(ctx context.Context, scope, runID string, decision Decision) (Run, error) {
	run, err := s.lockAndReload(ctx, scope, runID)
	if err != nil {
		return Run{}, err
	}
	defer s.fpLocks().release(run.Fingerprint)

	if run.State != StateAwaitingReview {
		return Run{}, fmt.Errorf("%w: run is %s", ErrInvalidState, run.State)
	}
	if err := decision.Validate(run); err != nil {
		return Run{}, err
	}
	run.Decision = decision

	if decision.AllRejected() {
		run.State = StateRejected
		run.UpdatedAt = time.Now().UTC()
		if err := s.Store.Save(ctx, run); err != nil {
			return Run{}, err
		}
		metrics.IncRunRejected()
		s.logTransition(ctx, run, StateAwaitingReview)
		return run, nil
	}

	if err := s.transition(ctx, &run, StateCommitting); err != nil {
		return Run{}, err
	}
	if err := s.finishCommit(ctx, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// finishCommit takes a run checkpointed at COMMITTING through to COMMITTED,
// writing approved candidates from the decision stored on the snapshot. It
// is the shared tail of Resume and of crash recovery through Advance.
func (s *Service) finishCommit(ctx context.Context, run *Run) error {
	run.Outcomes = s.commit(ctx, *run, run.Decision)
	if err := s.transition(ctx, run, StateCommitted); err != nil {
		return err
	}
	metrics.IncRunCommitted()
	return nil
}

// lockAndReload takes the per-fingerprint lock for a run and re-reads its
// checkpoint once the lock is held, since the run may have moved while the
// caller waited. The caller must release the lock on the returned run's
// fingerprint.
func (s *Service) lockAndReload(ctx context.Context, scope, runID string) (Run, error) {
	run, err := s.Store.Load(ctx, scope, runID)
	if err != nil {
		return Run{}, err
	}
	if !s.fpLocks().acquire(run.Fingerprint, s.lockTimeout()) {
		return Run{}, ErrConcurrentRun
	}
	reloaded, err := s.Store.Load(ctx, scope, runID)
	if err != nil {
		s.fpLocks().release(run.Fingerprint)
		return Run{}, err
	}
	return reloaded, nil
}

func (s *Service) commit(ctx context.Context, run Run, decision Decision) []CommitOutcome {
	var outcomes []CommitOutcome
	halted := false

	for _, cand := range run.Candidates {
		cd := decision[cand.ID]
		if cd.Kind == DecisionReject {
			continue
		}

		if halted {
			outcomes = append(outcomes, CommitOutcome{
				CandidateID: cand.ID,
				Status:      CommitNotAttempted,
			})
			continue
		}

		role := cand.Extracted
		if cd.Kind == DecisionEdit && cd.Edit != nil {
			role = *cd.Edit
		}

		recordID, err := s.Records.WriteFields(ctx, run.Scope, cand.ExistingID, recordstore.FieldValues(role.Fields()))
		if err != nil {
			halted = true
			metrics.IncCommitFailure()
			outcomes = append(outcomes, CommitOutcome{
				CandidateID: cand.ID,
				RecordID:    cand.ExistingID,
				Status:      CommitFailed,
				Error:       sanitizeError(err),
			})
			continue
		}

		if err := s.recordCitations(ctx, run, role, recordID); err != nil {
			halted = true
			metrics.IncCommitFailure()
			outcomes = append(outcomes, CommitOutcome{
				CandidateID: cand.ID,
				RecordID:    recordID,
				Status:      CommitFailed,
				Error:       sanitizeError(err),
			})
			continue
		}

		outcomes = append(outcomes, CommitOutcome{
			CandidateID: cand.ID,
			RecordID:    recordID,
			Status:      CommitOK,
		})
	}
	return outcomes
}

func (s *Service) recordCitations(ctx context.Context, run Run, role roles.ExtractedRole, recordID string) error {
	recorded := 0
	for _, ev := range role.Evidence {
		citation := citations.Citation{
			Fingerprint:   run.Fingerprint,
			Span:          ev.Span,
			Field:         ev.Field,
			ExtractedText: ev.Text,
			RecordID:      recordID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.Citations.Record(ctx, citation); err != nil {
			metrics.IncCitationsRecorded(recorded)
			return fmt.Errorf("record citation field=%s: %w", ev.Field, err)
		}
		recorded++
	}
	metrics.IncCitationsRecorded(recorded)
	return nil
}

// Cancel abandons a run suspended at AWAITING_REVIEW.
func (s *Service) Cancel(ctx context.Context, scope, runID string) (Run, error) {
	run, err := s.lockAndReload(ctx, scope, runID)
	if err != nil {
		return Run{}, err
	}
	defer s.fpLocks().release(run.Fingerprint)

	if run.State != StateAwaitingReview {
		return Run{}, fmt.Errorf("%w: run is %s", ErrInvalidState, run.State)
	}

	run.State = StateCancelled
	run.UpdatedAt = time.Now().UTC()
	if err := s.Store.Save(ctx, run); err != nil {
		return Run{}, err
	}
	metrics.IncRunCancelled()
	s.logTransition(ctx, run, StateAwaitingReview)
	return run, nil
}

func (s *Service) transition(ctx context.Context, run *Run, next State) error {
	prev := run.State
	run.State = next
	run.UpdatedAt = time.Now().UTC()
	if err := s.Store.Save(ctx, *run); err != nil {
		run.State = prev
		return fmt.Errorf("checkpoint %s->%s: %w", prev, next, err)
	}
	s.logTransition(ctx, *run, prev)
	return nil
}

func (s *Service) fail(ctx context.Context, run *Run, code string, err error) {
	prev := run.State
	run.State = StateFailed
	run.FailureCode = code
	run.FailureMessage = sanitizeError(err)
	run.UpdatedAt = time.Now().UTC()
	if saveErr := s.Store.Save(context.Background(), *run); saveErr != nil {
		telemetry.Error("run.fail.checkpoint", map[string]any{
			"run_id": run.ID,
			"err":    saveErr.Error(),
			"orig":   err.Error(),
		})
	}
	metrics.IncRunFailed()
	s.logTransition(ctx, *run, prev)
}

func (s *Service) logTransition(ctx context.Context, run Run, prev State) {
	telemetry.Info("run.state", map[string]any{
		"request_id":       requestIDFromContext(ctx),
		"scope":            run.Scope,
		"document_id":      run.DocumentID,
		"run_id":           run.ID,
		"state":            string(run.State),
		"state_transition": fmt.Sprintf("%s->%s", prev, run.State),
	})
}

func loadText(ctx context.Context, store object.ObjectStore, key string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
