package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "ctviewer")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "localhost:4318", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
