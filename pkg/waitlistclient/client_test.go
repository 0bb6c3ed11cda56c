package waitlistclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func replyWith(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestValidateFormat(t *testing.T) {
	assert.True(t, ValidateFormat(" ada@example.com "))
	assert.False(t, ValidateFormat("ada.example.com"))
	assert.False(t, ValidateFormat("ada@example"))
	assert.False(t, ValidateFormat("ada lovelace@example.com"))
	assert.False(t, ValidateFormat(""))
}

func TestSubmit_SendsNormalizedPayload(t *testing.T) {
	var got map[string]string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/waitlist", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		replyWith(http.StatusOK, `{"success":true}`)(w, r)
	})

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	outcome := client.Submit(context.Background(), Entry{
		Email:     "  Ada@Example.COM ",
		Name:      " Ada ",
		Interest:  "beta",
		Timestamp: ts,
	})

	assert.Equal(t, Accepted, outcome.Kind)
	assert.Equal(t, http.StatusOK, outcome.Status)
	assert.True(t, outcome.Joined())
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, "beta", got["interest"])
	assert.Equal(t, "2026-03-14T09:30:00Z", got["timestamp"])
}

func TestSubmit_OmitsEmptyOptionalFields(t *testing.T) {
	var got map[string]any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		replyWith(http.StatusOK, `{"success":true}`)(w, r)
	})

	client.Submit(context.Background(), Entry{Email: "ada@example.com"})

	assert.Equal(t, map[string]any{"email": "ada@example.com"}, got)
}

func TestSubmit_MapsResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   OutcomeKind
		reason string
	}{
		{"conflict", http.StatusConflict, `{"error":"Email already registered"}`, AlreadyJoined, "Email already registered"},
		{"bad request", http.StatusBadRequest, `{"error":"Invalid email"}`, Rejected, "Invalid email"},
		{"store failure", http.StatusInternalServerError, `{"error":"connection refused"}`, Rejected, "connection refused"},
		{"rate limited envelope", http.StatusTooManyRequests, `{"code":429,"data":null,"message":"Rate limit exceeded"}`, Rejected, ""},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, Rejected, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, replyWith(tt.status, tt.body))

			outcome := client.Submit(context.Background(), Entry{Email: "ada@example.com"})

			assert.Equal(t, tt.kind, outcome.Kind)
			assert.Equal(t, tt.status, outcome.Status)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.NoError(t, outcome.Err)
		})
	}
}

func TestSubmit_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(replyWith(http.StatusOK, `{"success":true}`))
	url := srv.URL
	srv.Close()

	outcome := New(url, nil).Submit(context.Background(), Entry{Email: "ada@example.com"})

	assert.Equal(t, TransportFailure, outcome.Kind)
	assert.Error(t, outcome.Err)
	assert.False(t, outcome.Joined())
}

func TestSubmit_CanceledContext(t *testing.T) {
	client := newTestServer(t, replyWith(http.StatusOK, `{"success":true}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := client.Submit(ctx, Entry{Email: "ada@example.com"})

	assert.Equal(t, TransportFailure, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
}

func TestCount(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/waitlist/count", r.URL.Path)
		replyWith(http.StatusOK, `{"code":200,"data":{"count":42},"message":"ok"}`)(w, r)
	})

	count, err := client.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestCount_ServerError(t *testing.T) {
	client := newTestServer(t, replyWith(http.StatusInternalServerError, `{"code":500,"data":null,"message":"Unable to count waitlist entries"}`))

	_, err := client.Count(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to count waitlist entries")
}

func TestNew_Defaults(t *testing.T) {
	c := New("  http://example.test/ ", nil)
	assert.Equal(t, "http://example.test", c.baseURL)
	assert.NotNil(t, c.httpClient)

	assert.Equal(t, DefaultBaseURL, New("", nil).baseURL)
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "already_joined", AlreadyJoined.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "transport_failure", TransportFailure.String())
	assert.Equal(t, "busy", Busy.String())
	assert.Equal(t, "outcome(9)", OutcomeKind(9).String())
}
