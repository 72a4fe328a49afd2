package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsNormalize(t *testing.T) {
	o := Options{URL: "http://127.0.0.1:8080/preview", OutputPath: "preview.png"}
	require.NoError(t, o.normalize())
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeoutSec*time.Second, o.Timeout)

	custom := Options{URL: "u", OutputPath: "p", Width: 10, Height: 20, Timeout: time.Second}
	require.NoError(t, custom.normalize())
	assert.Equal(t, 10, custom.Width)
	assert.Equal(t, time.Second, custom.Timeout)
}

func TestCapturePreviewPNG_RequiresTargets(t *testing.T) {
	err := CapturePreviewPNG(context.Background(), Options{OutputPath: "x.png"})
	require.ErrorContains(t, err, "URL is required")

	err = CapturePreviewPNG(context.Background(), Options{URL: "http://localhost"})
	require.ErrorContains(t, err, "OutputPath is required")
}
