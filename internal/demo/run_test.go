package demo_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/internal/demo"
	"github.com/dmitrymomot/socialauth/pkg/logger"
)

func TestRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan net.Addr, 1)
	hookCalled := make(chan struct{}, 1)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	cfg := demo.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}

	done := make(chan error, 1)
	go func() {
		done <- demo.Run(ctx, cfg, h, logger.Discard(), started, func(context.Context) error {
			hookCalled <- struct{}{}
			return nil
		})
	}()

	addr := <-started
	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.Len(t, hookCalled, 1)
}

func TestRun_HookError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errHook := errors.New("close failed")
	err := demo.Run(ctx, demo.Config{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), logger.Discard(), nil,
		func(context.Context) error { return errHook })
	require.ErrorIs(t, err, errHook)
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	err := demo.Run(context.Background(), demo.Config{Addr: "bad-address"}, http.NotFoundHandler(), logger.Discard(), nil)
	require.Error(t, err)
}
