package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
)

func TestFetchRecordsMapsWirePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/activity-logs", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"action": "create",
				"tableName": "products",
				"entityName": "Widget",
				"details": "{\"ProductName\":\"Widget\"}",
				"timestamp": "2024-03-10T09:00:00Z",
				"user": {"fullName": "Ada Lovelace", "username": "ada"}
			},
			{
				"action": "login",
				"tableName": "",
				"details": "",
				"timestamp": "2024-03-10T08:00:00Z"
			}
		]`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{
		BaseURL: server.URL,
		Tokens:  StaticToken("test-token"),
	})
	require.NoError(t, err)

	records, err := src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "create", records[0].Action)
	require.Equal(t, "products", records[0].Subject)
	require.Equal(t, "Widget", records[0].EntityLabel)
	require.Equal(t, `{"ProductName":"Widget"}`, records[0].Details)
	require.Equal(t, "Ada Lovelace", records[0].Actor.FullName)
	require.Equal(t, "ada", records[0].Actor.Username)
	require.True(t, records[0].OccurredAt.Equal(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)))

	require.Equal(t, "login", records[1].Action)
	require.Empty(t, records[1].Actor.FullName)
}

func TestFetchRecordsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = src.FetchRecords(context.Background())
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	require.Equal(t, goerrors.CategoryAuth, richErr.Category)
}

func TestFetchRecordsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = src.FetchRecords(context.Background())
	require.Error(t, err)
}

func TestFetchRecordsMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = src.FetchRecords(context.Background())
	require.Error(t, err)
}

func TestFetchRecordsTokenProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{
		BaseURL: server.URL,
		Tokens: TokenProviderFunc(func(context.Context) (string, error) {
			return "", context.DeadlineExceeded
		}),
	})
	require.NoError(t, err)

	_, err = src.FetchRecords(context.Background())
	require.Error(t, err)
}

func TestNewHTTPSourceRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{})
	require.Error(t, err)
}

func TestNewHTTPSourceNormalizesPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src, err := NewHTTPSource(HTTPConfig{BaseURL: server.URL + "/", Path: "logs"})
	require.NoError(t, err)

	_, err = src.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/logs", gotPath)
}
