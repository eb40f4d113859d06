package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	security "github.com/awelch/personal-site/internal/server"
)

func TestHTTPServer_Address(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), ":8080")
	assert.Equal(t, ":8080", srv.Address())
}

func TestHTTPServer_StartAndStop(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "127.0.0.1:0")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(security.NewPlainListener())
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Stop(context.Background()))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_StartFailsOnBadAddress(t *testing.T) {
	srv := NewHTTPServer(http.NewServeMux(), "256.256.256.256:99999")
	assert.Error(t, srv.Start(security.NewPlainListener()))
}
