// Package source fetches raw audit-log records from the backend API that the
// dashboard derives its activity feed from.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-activity-feed/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultRequestTimeout bounds a single fetch when no client is supplied.
const DefaultRequestTimeout = 10 * time.Second

// TokenProvider supplies the bearer token attached to fetch requests. The
// session lifecycle that produces the token lives outside this module.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token implements TokenProvider.
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken returns a provider that always yields the same token.
func StaticToken(token string) TokenProvider {
	return TokenProviderFunc(func(context.Context) (string, error) {
		return token, nil
	})
}

// HTTPConfig wires the HTTP-backed log source.
type HTTPConfig struct {
	BaseURL string
	// Path is the audit-log listing endpoint, default "/api/activity-logs".
	Path   string
	Tokens TokenProvider
	Client *http.Client
	Logger types.Logger
}

// HTTPSource implements types.LogSource against the backend audit-log API.
type HTTPSource struct {
	baseURL string
	path    string
	tokens  TokenProvider
	client  *http.Client
	logger  types.Logger
}

var _ types.LogSource = (*HTTPSource)(nil)

// NewHTTPSource constructs the HTTP log source.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, goerrors.New("source: base URL required", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	path := cfg.Path
	if path == "" {
		path = "/api/activity-logs"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &HTTPSource{
		baseURL: base,
		path:    path,
		tokens:  cfg.Tokens,
		client:  client,
		logger:  logger,
	}, nil
}

// wireRecord is the backend's audit-log row shape.
type wireRecord struct {
	Action     string    `json:"action"`
	TableName  string    `json:"tableName"`
	EntityName string    `json:"entityName"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
	User       *wireUser `json:"user"`
}

type wireUser struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

// FetchRecords retrieves the current audit-log page and maps it to raw
// records. A 401 is surfaced as an auth-category error so the caller's
// session layer can react; the feed keeps its previous contents either way.
func (s *HTTPSource) FetchRecords(ctx context.Context) ([]types.RawLogRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+s.path, nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "source: building fetch request failed").
			WithCode(goerrors.CodeInternal)
	}
	req.Header.Set("Accept", "application/json")
	if s.tokens != nil {
		token, err := s.tokens.Token(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "source: resolving bearer token failed").
				WithCode(goerrors.CodeUnauthorized)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "source: activity log fetch failed").
			WithCode(goerrors.CodeInternal)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		return nil, goerrors.New("source: activity log fetch unauthorized", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, goerrors.New(
			fmt.Sprintf("source: activity log fetch returned status %d", resp.StatusCode),
			goerrors.CategoryInternal,
		).WithCode(goerrors.CodeInternal)
	}

	var rows []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "source: decoding activity log payload failed").
			WithCode(goerrors.CodeInternal)
	}

	records := make([]types.RawLogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRawRecord(row))
	}
	s.logger.Debug("fetched activity log records", "count", len(records))
	return records, nil
}

func toRawRecord(row wireRecord) types.RawLogRecord {
	record := types.RawLogRecord{
		Action:      row.Action,
		Subject:     row.TableName,
		EntityLabel: row.EntityName,
		Details:     row.Details,
		OccurredAt:  row.Timestamp,
	}
	if row.User != nil {
		record.Actor = types.ActorRef{
			FullName:  row.User.FullName,
			FirstName: row.User.FirstName,
			LastName:  row.User.LastName,
			Username:  row.User.Username,
		}
	}
	return record
}
