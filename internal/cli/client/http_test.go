package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_ReportsProgress(t *testing.T) {
	data := []byte("slide deck bytes")

	var calls []int64
	pr := &progressReader{
		reader: bytes.NewReader(data),
		total:  int64(len(data)),
		onProgress: func(current, total int64) {
			assert.Equal(t, int64(len(data)), total)
			calls = append(calls, current)
		},
	}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, result)
	require.NotEmpty(t, calls)
	assert.Equal(t, int64(len(data)), calls[len(calls)-1])
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i], calls[i-1])
	}
}

func TestProgressReader_NilCallback(t *testing.T) {
	pr := &progressReader{reader: bytes.NewReader([]byte("hello")), total: 5}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(result))
}

func TestAPIClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PROJ-1", body["jiraId"])

		_, _ = w.Write([]byte(`{"ok":true,"jiraId":"PROJ-1","suggestions":"ship it"}`))
	}))
	defer srv.Close()

	c := NewAPIClientWithConfig("secret", srv.URL)

	var resp AnalyzeResponse
	err := c.Post(context.Background(), "/jira/analyze", map[string]string{"jiraId": "PROJ-1"}, &resp)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "ship it", resp.Suggestions)
}

func TestAPIClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"meetingTypes":[],"personas":[]}`))
	}))
	defer srv.Close()

	var opts OptionsResponse
	require.NoError(t, NewAPIClientWithConfig("", srv.URL).Get(context.Background(), "/options", &opts))
}

func TestAPIClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFailed bool
	}{
		{"error envelope", http.StatusNotFound, `{"error":"persona not found"}`, "persona not found", false},
		{"plain text", http.StatusBadGateway, "upstream exploded", "upstream exploded", false},
		{"partial transcript", http.StatusBadGateway, `{"error":"generation failed","transcript":"Facilitator: hello"}`, "generation failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewAPIClientWithConfig("", srv.URL).Post(context.Background(), "/meetings/run", map[string]string{}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)

			var failed *MeetingFailedError
			assert.Equal(t, tt.wantFailed, errors.As(err, &failed))
			if tt.wantFailed {
				assert.Equal(t, "Facilitator: hello", failed.Transcript)
			}
		})
	}
}

func TestStatusCode_NonAPIError(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("dial tcp: refused")))
}

func TestAPIClient_PostDownload(t *testing.T) {
	deck := []byte("PK\x03\x04fake-pptx")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/proposals", r.URL.Path)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
		_, _ = w.Write(deck)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "deck.pptx")
	var last int64
	n, err := NewAPIClientWithConfig("", srv.URL).PostDownload(context.Background(), "/proposals",
		proposalRequest{MeetingIDs: []string{"t1"}}, out, func(current, total int64) { last = current })
	require.NoError(t, err)
	assert.Equal(t, int64(len(deck)), n)
	assert.Equal(t, int64(len(deck)), last)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, deck, written)
}

func TestAPIClient_PostDownload_ErrorCreatesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"meetingIds is required"}`))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "deck.pptx")
	_, err := NewAPIClientWithConfig("", srv.URL).PostDownload(context.Background(), "/proposals", proposalRequest{}, out, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.NoFileExists(t, out)
}

func TestNewAPIClientWithCmd_Resolution(t *testing.T) {
	useConfigDir(t, t.TempDir())
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIToken: "from-config", APIURL: "http://config:8080"}))

	t.Run("config fills gaps", func(t *testing.T) {
		t.Setenv(envAPIToken, "")
		t.Setenv(envAPIURL, "")
		c, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, "from-config", c.token)
		assert.Equal(t, "http://config:8080", c.baseURL)
	})

	t.Run("env wins over config", func(t *testing.T) {
		t.Setenv(envAPIToken, "from-env")
		t.Setenv(envAPIURL, "http://env:8080")
		c, err := NewAPIClientWithCmd(nil)
		require.NoError(t, err)
		assert.Equal(t, "from-env", c.token)
		assert.Equal(t, "http://env:8080", c.baseURL)
	})
}
