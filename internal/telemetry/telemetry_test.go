package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func restoreGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestSetupInstallsRecordingProvider(t *testing.T) {
	restoreGlobalProvider(t)

	shutdown, err := Setup(context.Background(), Options{ServiceName: "trainer-test"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "run")
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, shutdown(context.Background()))
}

func TestSetupStdoutExportsSpans(t *testing.T) {
	restoreGlobalProvider(t)

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Options{ServiceName: "trainer-test", Stdout: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "category.evaluate")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"category.evaluate"`)
	assert.Contains(t, buf.String(), "trainer-test")
}

func TestNewLoggerNeverNil(t *testing.T) {
	assert.NotNil(t, NewLogger(true))
	assert.NotNil(t, NewLogger(false))
}
