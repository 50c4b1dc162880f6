package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"solarcalc/internal/application/port/output"
	"solarcalc/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)            {}
func (nopLogger) Info(string, ...any)             {}
func (nopLogger) Warn(string, ...any)             {}
func (nopLogger) Error(string, ...any)            {}
func (l nopLogger) With(...any) output.LoggerPort { return l }
func (nopLogger) Close() error                    { return nil }

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key"}, nopLogger{})
}

func TestPerformSuccess(t *testing.T) {
	var got actionEnvelope
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/actions" {
			t.Errorf("path = %s, want /v1/actions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q, want bearer token", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		_ = json.NewEncoder(w).Encode(actionResponse{Status: "success", Payload: "<body>ok</body>"})
	})

	res := a.Perform(context.Background(), entity.ActionRequest{
		Kind:   entity.ActionRead,
		Target: "body",
	}, time.Second)

	if res.Status != entity.ActionSuccess {
		t.Fatalf("status = %s, want success (err %v)", res.Status, res.Err)
	}
	if res.Payload != "<body>ok</body>" {
		t.Errorf("payload = %q", res.Payload)
	}
	if got.Action != "read" || got.Target != "body" || got.TimeoutMS != 1000 {
		t.Errorf("envelope = %+v", got)
	}
}

func TestPerformServerErrorIsTransient(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionRead}, time.Second)

	if res.Status != entity.ActionFailure {
		t.Fatalf("status = %s, want failure", res.Status)
	}
	if !errors.Is(res.Err, entity.ErrTransientGateway) {
		t.Errorf("err = %v, want ErrTransientGateway", res.Err)
	}
	if !res.Retryable() {
		t.Error("5xx result not retryable")
	}
}

func TestPerformClientErrorIsRejected(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad action", http.StatusBadRequest)
	})

	res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionRead}, time.Second)

	if res.Status != entity.ActionFailure {
		t.Fatalf("status = %s, want failure", res.Status)
	}
	if !errors.Is(res.Err, entity.ErrGatewayRejected) {
		t.Errorf("err = %v, want ErrGatewayRejected", res.Err)
	}
	if res.Retryable() {
		t.Error("4xx result retryable, retrying an unchanged rejected action is pointless")
	}
}

func TestPerformGatewayTimeoutStatus(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionRead}, time.Second)

	if res.Status != entity.ActionTimeout {
		t.Fatalf("status = %s, want timeout", res.Status)
	}
	if !res.Retryable() {
		t.Error("timeout result not retryable")
	}
}

func TestPerformDeadlineExceeded(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionRead}, 20*time.Millisecond)

	if res.Status != entity.ActionTimeout {
		t.Fatalf("status = %s, want timeout (err %v)", res.Status, res.Err)
	}
}

func TestPerformTargetNotFound(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(actionResponse{Status: "failure", Error: "target not found"})
	})

	res := a.Perform(context.Background(), entity.ActionRequest{
		Kind:   entity.ActionInput,
		Target: "#no-such-field",
	}, time.Second)

	if res.Status != entity.ActionFailure {
		t.Fatalf("status = %s, want failure", res.Status)
	}
	if !errors.Is(res.Err, entity.ErrTargetNotFound) {
		t.Errorf("err = %v, want ErrTargetNotFound", res.Err)
	}
	if res.Retryable() {
		t.Error("missing target retryable, the page will not grow the element")
	}
}

func TestPerformReusesConnectionAfterErrorStatus(t *testing.T) {
	var mu sync.Mutex
	remoteAddrs := map[string]bool{}
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		remoteAddrs[r.RemoteAddr] = true
		mu.Unlock()
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionRead}, time.Second)
		if res.Status != entity.ActionFailure {
			t.Fatalf("status = %s, want failure", res.Status)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(remoteAddrs) != 1 {
		t.Errorf("3 sequential requests used %d connections, want 1 (body not drained?)", len(remoteAddrs))
	}
}

func TestPerformRejectsInvalidRequestLocally(t *testing.T) {
	a := newTestAdapter(t, func(http.ResponseWriter, *http.Request) {
		t.Error("invalid request reached the backend")
	})

	res := a.Perform(context.Background(), entity.ActionRequest{Kind: entity.ActionNavigate}, time.Second)

	if res.Status != entity.ActionFailure || !errors.Is(res.Err, entity.ErrGatewayRejected) {
		t.Errorf("result = %+v, want local rejection", res)
	}
}
