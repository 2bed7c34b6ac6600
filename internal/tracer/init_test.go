package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledTracerIsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")

	shutdown := InitTracer()

	assert.NoError(t, shutdown(context.Background()))
}
