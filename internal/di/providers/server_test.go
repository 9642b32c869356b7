package providers

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio-server/internal/logger"
)

func TestServe_PortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}

	err = serve(srv, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), taken.Addr().String())
}

func TestServe_StartsAndShutsDown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	require.NoError(t, serve(srv, logger.Discard()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}
