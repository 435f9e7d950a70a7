package serve

import (
	"context"
	"net/http"
	"testing"
	"time"

	"fjacquet/spending-coach/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", Cmd.Use)
	assert.NotNil(t, Cmd.RunE)
	assert.NotNil(t, Cmd.Flags().Lookup("addr"))
}

func TestListenAddr(t *testing.T) {
	t.Setenv("PORT", "")
	assert.Equal(t, ":9000", ListenAddr(":9000", ":8080"))
	assert.Equal(t, ":8080", ListenAddr("", ":8080"))

	t.Setenv("PORT", "3000")
	assert.Equal(t, ":3000", ListenAddr("", ":8080"))
	assert.Equal(t, ":9000", ListenAddr(":9000", ":8080"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	logger := logging.NewMockLogger()
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	require.NoError(t, Run(ctx, server, logger))
	assert.True(t, logger.HasEntry("INFO", "Shutting down server..."))
	assert.True(t, logger.HasEntry("INFO", "Server exited"))
}

func TestRun_ListenError(t *testing.T) {
	logger := logging.NewMockLogger()
	server := &http.Server{Addr: "not-an-address", Handler: http.NotFoundHandler()}

	err := Run(context.Background(), server, logger)
	require.Error(t, err)
	assert.True(t, logger.HasEntry("ERROR", "Server stopped with error"))
}
