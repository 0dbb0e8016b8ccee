package http_client_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/specialistvlad/plugtree/internal/app"
	"github.com/specialistvlad/plugtree/modules/core"
	"github.com/specialistvlad/plugtree/modules/http_client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FromConstruct(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	}))
	t.Cleanup(server.Close)

	a, _ := app.SetupAppTest(t, map[string]string{"main.hcl": `
plugin "main" {
  assembly "http_client" {}
}
builder "object" {}
extension "/Clients" {
  construct "object" "Api" {
    type           = "http_client"
    timeout        = "2s"
    max_idle_conns = 5
  }
}
`}, &core.Module{}, &http_client.Module{})
	require.NoError(t, a.Load(a.Context()))

	// --- Act ---
	v, err := a.Unwrap(a.Context(), "/Clients/Api")
	require.NoError(t, err)
	client := v.(*http_client.Client)
	status, body, err := client.Get(t.Context(), server.URL)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(body))

	hc, err := client.HTTP()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, hc.Timeout)
}

func TestClient_InvalidTimeout(t *testing.T) {
	t.Parallel()

	c := &http_client.Client{Timeout: "soon"}

	_, err := c.HTTP()

	assert.ErrorContains(t, err, `invalid timeout "soon"`)
	assert.NoError(t, c.Close())
}
