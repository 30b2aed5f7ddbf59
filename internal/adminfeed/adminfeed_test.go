package adminfeed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkahng/tactoe/chatroom"
)

func TestServer_HealthAndStats(t *testing.T) {
	repo := chatroom.NewRepository()
	room := chatroom.New("127.0.0.1:9300")
	repo.Add(room)

	var connected int64 = 2
	srv := New(repo, &connected)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats statsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(2), stats.ConnectedPlayers)
	assert.Equal(t, 1, stats.FreeAny)
	assert.Equal(t, 1, stats.AllChatrooms)
}
