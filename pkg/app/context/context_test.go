package context

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, defaultLogger, Logger(ctx))
	assert.Equal(t, os.Stdout, Output(ctx))
}

func TestWithFile(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), log.NewLogfmtLogger(&buf))
	ctx = WithFile(ctx, "symbols/main.yml")
	require.NoError(t, Logger(ctx).Log("msg", "hello"))
	assert.Equal(t, "file=symbols/main.yml msg=hello\n", buf.String())
}

func TestWithOutput(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithOutput(context.Background(), &buf)
	assert.Same(t, &buf, Output(ctx))
}
