package cli_behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegen/internal/cli"
	"github.com/vk/bundlegen/internal/testutil"
)

func TestDisplaysHelp(t *testing.T) {
	result := testutil.Run(t, nil, "-h")
	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "Usage:")
	assert.Contains(t, result.Output, "-manifest")
}

func TestUnknownCommand(t *testing.T) {
	result := testutil.Run(t, nil, "serve")

	var exitErr *cli.ExitError
	require.ErrorAs(t, result.Err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestProbeWithoutServer(t *testing.T) {
	result := testutil.Run(t, nil, "probe", "-dev-server", "http://127.0.0.1:9", "-probe-timeout", "300ms")
	require.Error(t, result.Err)
	assert.Empty(t, result.Output)
}
