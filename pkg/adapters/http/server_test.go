package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley"
	parleyhttp "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/dialogs"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/skill"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sk := &skill.Skill{
		Name:     "echo",
		Fallback: "Sorry?",
		Bindings: map[string]skill.Binding{
			"Ask": {Dialog: dialogs.PromptName("name")},
		},
	}
	recognizer := ports.RecognizerFunc(func(_ context.Context, turn domain.Turn) (domain.Recognition, error) {
		if strings.Contains(strings.ToLower(turn.Text), "ask") {
			return domain.Recognition{Intent: "Ask", Score: 0.9}, nil
		}
		return domain.Recognition{}, nil
	})
	eng, err := parley.New(sk, parley.WithRecognizer(recognizer))
	require.NoError(t, err)
	eng.Register(dialogs.Prompt("name", dialogs.PromptConfig{
		Question: domain.Prompt{Text: "What's your name?"},
	}))

	srv := httptest.NewServer(parleyhttp.NewHandler(eng, parleyhttp.WithVersion("test")))
	t.Cleanup(srv.Close)
	return srv
}

func postTurn(t *testing.T, srv *httptest.Server, conv string, body parleyhttp.TurnRequest) (*http.Response, parleyhttp.TurnResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/conversations/"+conv+"/turns", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out parleyhttp.TurnResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestPostTurn_RunsDialog(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postTurn(t, srv, "c1", parleyhttp.TurnRequest{Text: "ask me"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c1", out.ConversationID)
	require.Len(t, out.Replies, 1)
	assert.Equal(t, "What's your name?", out.Replies[0].Text)

	resp, out = postTurn(t, srv, "c1", parleyhttp.TurnRequest{Text: "Ada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, out.Replies)
}

func TestPostTurn_InvalidBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/conversations/c1/turns", "application/json", strings.NewReader("{broken"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateConversation_MintsID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/conversations", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out["conversation_id"])
}

func TestGetConversation(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/conversations/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	postTurn(t, srv, "c1", parleyhttp.TurnRequest{Text: "ask me"})

	resp, err = http.Get(srv.URL + "/conversations/c1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state domain.State
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "c1", state.ConversationID)
	require.Len(t, state.Stack, 1, "the prompt is suspended on the stack")
	assert.True(t, state.Stack[0].Waiting)
}

func TestDeleteConversation(t *testing.T) {
	srv := newTestServer(t)
	postTurn(t, srv, "c1", parleyhttp.TurnRequest{Text: "ask me"})

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/conversations/c1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/conversations/c1")
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHealthAndInfo(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "parley-http", info["app"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/conversations/c1/turns", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
