// Package http implements a remote-store backend speaking the editor save
// protocol: a single endpoint receiving command envelopes (save, recover,
// check) with the client's generation carried in an If-Match header.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bft-labs/docsave/internal/domain"
	"github.com/bft-labs/docsave/internal/ports"
)

const documentEndpoint = "/v1/document"

// Commands understood by the store.
const (
	commandCheck   = "check"
	commandSave    = "save"
	commandRecover = "recover"
)

// envelope is the JSON request body for every command.
type envelope struct {
	Command     string `json:"command"`
	Version     string `json:"version"`
	Interactive bool   `json:"interactive,omitempty"`
	Data        string `json:"data,omitempty"`
}

// response is the JSON body returned by the store.
type response struct {
	Generation     uint64 `json:"generation"`
	ReloadRequired bool   `json:"reload_required"`
}

// clientVersion identifies this client implementation to the store.
const clientVersion = "docsave/1"

// Store implements ports.Backend against a remote HTTP document store.
// Transport-level timeout policy belongs to the injected HTTP client; the
// orchestrator imposes no timer of its own.
type Store struct {
	serviceURL string
	authKey    string
	client     ports.HTTPClient
	logger     ports.Logger
}

// NewStore creates a remote backend. serviceURL is the base URL without a
// trailing slash; authKey may be empty for unauthenticated stores.
func NewStore(serviceURL, authKey string, client ports.HTTPClient, logger ports.Logger) *Store {
	return &Store{
		serviceURL: serviceURL,
		authKey:    authKey,
		client:     client,
		logger:     logger,
	}
}

// Initialize checks that the store is reachable and accepts this client.
func (s *Store) Initialize(ctx context.Context) error {
	resp, err := s.post(ctx, envelope{Command: commandCheck, Version: clientVersion}, 0)
	if err != nil {
		return fmt.Errorf("store check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store check returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Save posts the snapshot. The fromGeneration travels in If-Match; a 412
// means the store holds a newer generation than the client believes.
func (s *Store) Save(ctx context.Context, snapshot []byte, fromGeneration domain.Generation, interactive bool) (domain.Generation, error) {
	env := envelope{
		Command:     commandSave,
		Version:     clientVersion,
		Interactive: interactive,
		Data:        string(snapshot),
	}
	resp, err := s.post(ctx, env, fromGeneration)
	if err != nil {
		return 0, domain.Connectivity(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode/100 == 2:
		var r response
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return 0, domain.Rejected(fmt.Errorf("decode save response: %w", err))
		}
		return domain.Generation(r.Generation), nil
	case resp.StatusCode == http.StatusPreconditionFailed:
		return 0, domain.Conflict(fmt.Errorf("store ahead of generation %d", fromGeneration))
	case resp.StatusCode/100 == 5:
		return 0, domain.Connectivity(fmt.Errorf("store returned %d", resp.StatusCode))
	default:
		body, _ := io.ReadAll(resp.Body)
		return 0, domain.Rejected(fmt.Errorf("store returned %d: %s", resp.StatusCode, string(body)))
	}
}

// Recover asks the store to reconcile after a conflict.
func (s *Store) Recover(ctx context.Context) (domain.RecoveryOutcome, error) {
	resp, err := s.post(ctx, envelope{Command: commandRecover, Version: clientVersion}, 0)
	if err != nil {
		return domain.RecoveryLocalCurrent, fmt.Errorf("recover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return domain.RecoveryLocalCurrent, fmt.Errorf("recover returned %d: %s", resp.StatusCode, string(body))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.RecoveryLocalCurrent, fmt.Errorf("decode recover response: %w", err)
	}
	if r.ReloadRequired {
		return domain.RecoveryReloadRequired, nil
	}
	return domain.RecoveryLocalCurrent, nil
}

// post sends a command envelope. A non-zero generation is attached as an
// If-Match precondition.
func (s *Store) post(ctx context.Context, env envelope, generation domain.Generation) (*http.Response, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	url := s.serviceURL + documentEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.authKey)
	}
	if env.Command == commandSave {
		req.Header.Set("If-Match", strconv.FormatUint(uint64(generation), 10))
	}

	return s.client.Do(req)
}

var _ ports.Backend = (*Store)(nil)
