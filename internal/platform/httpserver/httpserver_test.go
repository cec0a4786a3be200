package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_New_AppliesConfiguredTimeouts(t *testing.T) {
	srv := New(Config{
		Addr:              ":9090",
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       time.Minute,
	}, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 45*time.Second, srv.WriteTimeout)
	assert.Equal(t, time.Minute, srv.IdleTimeout)
}

func Test_New_DefaultsZeroTimeouts(t *testing.T) {
	srv := New(Config{Addr: ":8080"}, http.NotFoundHandler())

	assert.Equal(t, defaultReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.IdleTimeout)
}
