package web

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusURL(t *testing.T) {
	assert.Equal(t, "http://10.0.0.5:8080/api/v1/status", StatusURL("10.0.0.5:8080"))
	assert.Equal(t, "http://clock.local/api/v1/status", StatusURL("clock.local:80"))
	assert.Equal(t, "http://[fe80::1]:9000/api/v1/status", StatusURL("[fe80::1]:9000"))
	assert.Empty(t, StatusURL("not an address"))

	u, err := url.Parse(StatusURL(":8080"))
	require.NoError(t, err)
	assert.Equal(t, "8080", u.Port())
	assert.NotEmpty(t, u.Hostname())
	assert.False(t, strings.HasPrefix(u.Hostname(), "127."), "loopback address chosen")
}
