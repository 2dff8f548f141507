package workerproc

import (
	"context"
	"errors"
	"testing"

	"reconcile-backend/internal/bootstrap"
	"reconcile-backend/internal/queue"
)

type stubProcessor struct {
	scope string
	runID string
	err   error
	calls int
}

func (s *stubProcessor) Advance(ctx context.Context, scope, runID string) error {
	_ = ctx
	s.calls++
	s.scope = scope
	s.runID = runID
	return s.err
}

func appWith(p bootstrap.RunProcessor) *bootstrap.App {
	return &bootstrap.App{RunProcessor: p}
}

func TestParseMessageEmptyBody(t *testing.T) {
	for _, body := range []string{"", "   "} {
		_, _, err := ParseMessage(body)
		var empty ErrEmptyBody
		if !errors.As(err, &empty) {
			t.Fatalf("body %q: expected ErrEmptyBody, got %v", body, err)
		}
	}
}

func TestParseMessageDecodeFailure(t *testing.T) {
	_, meta, err := ParseMessage("{not json")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if meta.BodyLen == 0 || meta.BodySHA == "" {
		t.Fatalf("meta should describe the bad body: %+v", meta)
	}
}

func TestParseMessageMissingIdentity(t *testing.T) {
	for _, body := range []string{
		`{"scope": "scope-1", "requestId": "req-1"}`,
		`{"runId": "run-1", "requestId": "req-1"}`,
	} {
		_, _, err := ParseMessage(body)
		var missing ErrMissingRunID
		if !errors.As(err, &missing) {
			t.Fatalf("body %q: expected ErrMissingRunID, got %v", body, err)
		}
		if missing.RequestID != "req-1" {
			t.Fatalf("request id not carried: %+v", missing)
		}
	}
}

func TestHandleMessageProcessesRun(t *testing.T) {
	proc := &stubProcessor{}
	body := `{"runId": "run-1", "scope": "scope-1", "requestId": "req-1"}`

	if err := HandleMessage(context.Background(), appWith(proc), body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if proc.calls != 1 || proc.scope != "scope-1" || proc.runID != "run-1" {
		t.Fatalf("processor not invoked as expected: %+v", proc)
	}
}

func TestHandleMessageReusesParsedMessage(t *testing.T) {
	proc := &stubProcessor{}
	msg := queue.Message{RunID: "run-2", Scope: "scope-2"}
	ctx := WithParsedMessage(context.Background(), msg)

	if err := HandleMessage(ctx, appWith(proc), "ignored"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if proc.runID != "run-2" || proc.scope != "scope-2" {
		t.Fatalf("parsed message not reused: %+v", proc)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	proc := &stubProcessor{err: errors.New("advance failed")}
	body := `{"runId": "run-1", "scope": "scope-1"}`

	err := HandleMessage(context.Background(), appWith(proc), body)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.RunID != "run-1" || procErr.Scope != "scope-1" {
		t.Fatalf("process error missing identity: %+v", procErr)
	}
}

func TestHandleMessageRequiresService(t *testing.T) {
	body := `{"runId": "run-1", "scope": "scope-1"}`
	if err := HandleMessage(context.Background(), nil, body); err == nil {
		t.Fatalf("nil app should fail")
	}
	if err := HandleMessage(context.Background(), &bootstrap.App{}, body); err == nil {
		t.Fatalf("app without processor should fail")
	}
}
