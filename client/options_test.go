package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("CALDAV_ROOT_URL", "https://cloud.example.com/remote.php/dav/")
	t.Setenv("CALDAV_REQUEST_TOKEN", "tok-123")

	opts, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com/remote.php/dav/", opts.RootURL)

	headers := opts.HeaderProvider()
	assert.Equal(t, "tok-123", headers["requesttoken"])
	assert.Equal(t, "On", headers["X-NC-CalDAV-Webcal-Caching"], "caching hint defaults on")
	assert.Equal(t, "XMLHttpRequest", headers["X-Requested-With"])
}

func TestOptionsFromEnvMissingRoot(t *testing.T) {
	t.Setenv("CALDAV_ROOT_URL", "")

	_, err := OptionsFromEnv()
	assert.Error(t, err)
}

func TestStaticHeaderProvider(t *testing.T) {
	provider := StaticHeaderProvider("tok", "Off")
	headers := provider()
	assert.Equal(t, "tok", headers["requesttoken"])
	assert.Equal(t, "Off", headers["X-NC-CalDAV-Webcal-Caching"])
}
