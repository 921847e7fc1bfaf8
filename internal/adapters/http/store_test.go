package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	logadapter "github.com/bft-labs/docsave/internal/adapters/log"
	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

type recordedRequest struct {
	path    string
	headers http.Header
	env     envelope
}

// storeServer fakes the remote document store.
type storeServer struct {
	mu       sync.Mutex
	requests []recordedRequest

	status  int
	reply   response
	rawBody string
}

func (s *storeServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var env envelope
		_ = json.Unmarshal(body, &env)

		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			env:     env,
		})
		status, reply, raw := s.status, s.reply, s.rawBody
		s.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if raw != "" {
			io.WriteString(w, raw)
			return
		}
		json.NewEncoder(w).Encode(reply)
	}
}

func (s *storeServer) last(t *testing.T) recordedRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatal("no requests recorded")
	}
	return s.requests[len(s.requests)-1]
}

func newTestStore(t *testing.T, srv *storeServer, authKey string) (*Store, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	return NewStore(ts.URL, authKey, ts.Client(), logadapter.NewNoopLogger()), ts
}

func TestStore_Initialize(t *testing.T) {
	srv := &storeServer{}
	s, _ := newTestStore(t, srv, "secret")

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() = %v", err)
	}

	req := srv.last(t)
	if req.path != documentEndpoint {
		t.Errorf("path = %q, want %q", req.path, documentEndpoint)
	}
	if req.env.Command != commandCheck {
		t.Errorf("command = %q, want %q", req.env.Command, commandCheck)
	}
	if req.env.Version != clientVersion {
		t.Errorf("version = %q, want %q", req.env.Version, clientVersion)
	}
	if got := req.headers.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer token", got)
	}
	if got := req.headers.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestStore_InitializeRejected(t *testing.T) {
	srv := &storeServer{status: http.StatusForbidden, rawBody: "bad key"}
	s, _ := newTestStore(t, srv, "wrong")

	if err := s.Initialize(context.Background()); err == nil {
		t.Error("Initialize() = nil, want error on 403")
	}
}

func TestStore_SaveSuccess(t *testing.T) {
	srv := &storeServer{reply: response{Generation: 8}}
	s, _ := newTestStore(t, srv, "")

	gen, err := s.Save(context.Background(), []byte("<doc/>"), 7, true)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if gen != 8 {
		t.Errorf("generation = %d, want 8", gen)
	}

	req := srv.last(t)
	if req.env.Command != commandSave {
		t.Errorf("command = %q, want %q", req.env.Command, commandSave)
	}
	if !req.env.Interactive {
		t.Error("interactive flag not set")
	}
	if req.env.Data != "<doc/>" {
		t.Errorf("data = %q, want document snapshot", req.env.Data)
	}
	if got := req.headers.Get("If-Match"); got != "7" {
		t.Errorf("If-Match = %q, want %q", got, "7")
	}
	if got := req.headers.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want unset without an auth key", got)
	}
}

func TestStore_SaveStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   domain.FailureKind
	}{
		{"precondition failed is a conflict", http.StatusPreconditionFailed, domain.FailureConflict},
		{"server error is connectivity", http.StatusBadGateway, domain.FailureConnectivity},
		{"client error is a rejection", http.StatusRequestEntityTooLarge, domain.FailureRejected},
		{"unauthorized is a rejection", http.StatusUnauthorized, domain.FailureRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &storeServer{status: tt.status, rawBody: "nope"}
			s, _ := newTestStore(t, srv, "")

			_, err := s.Save(context.Background(), []byte("<doc/>"), 3, false)
			if err == nil {
				t.Fatal("Save() = nil, want error")
			}
			if got := domain.Classify(err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}

func TestStore_SaveTransportFailure(t *testing.T) {
	// Server that is immediately closed: connection refused.
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	s := NewStore(url, "", http.DefaultClient, logadapter.NewNoopLogger())
	_, err := s.Save(context.Background(), []byte("<doc/>"), 0, true)
	if domain.Classify(err) != domain.FailureConnectivity {
		t.Errorf("Save() = %v, want connectivity failure", err)
	}
}

func TestStore_SaveMalformedResponse(t *testing.T) {
	srv := &storeServer{rawBody: "{not json"}
	s, _ := newTestStore(t, srv, "")

	_, err := s.Save(context.Background(), []byte("<doc/>"), 0, true)
	if domain.Classify(err) != domain.FailureRejected {
		t.Errorf("Save() = %v, want rejection for malformed body", err)
	}
}

func TestStore_Recover(t *testing.T) {
	tests := []struct {
		name  string
		reply response
		want  domain.RecoveryOutcome
	}{
		{"local current", response{Generation: 4}, domain.RecoveryLocalCurrent},
		{"reload required", response{Generation: 9, ReloadRequired: true}, domain.RecoveryReloadRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &storeServer{reply: tt.reply}
			s, _ := newTestStore(t, srv, "")

			out, err := s.Recover(context.Background())
			if err != nil {
				t.Fatalf("Recover() = %v", err)
			}
			if out != tt.want {
				t.Errorf("Recover() = %v, want %v", out, tt.want)
			}

			req := srv.last(t)
			if req.env.Command != commandRecover {
				t.Errorf("command = %q, want %q", req.env.Command, commandRecover)
			}
			if got := req.headers.Get("If-Match"); got != "" {
				t.Errorf("If-Match = %q, want unset on recover", got)
			}
		})
	}
}

func TestStore_RecoverServerError(t *testing.T) {
	srv := &storeServer{status: http.StatusInternalServerError, rawBody: "boom"}
	s, _ := newTestStore(t, srv, "")

	_, err := s.Recover(context.Background())
	if err == nil {
		t.Error("Recover() = nil, want error on 500")
	}
}

func TestStore_ContextCancellation(t *testing.T) {
	srv := &storeServer{}
	s, _ := newTestStore(t, srv, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, []byte("<doc/>"), 0, true)
	if err == nil {
		t.Fatal("Save() = nil, want error with cancelled context")
	}
	var saveErr *domain.SaveError
	if !errors.As(err, &saveErr) || saveErr.Kind != domain.FailureConnectivity {
		t.Errorf("Save() = %v, want connectivity failure", err)
	}
}

var _ ports.HTTPClient = http.DefaultClient
