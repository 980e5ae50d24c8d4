package httpx_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/httpx"
)

func TestHTTPExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("get with query", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "tok", r.URL.Query().Get("access_token"))
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 42, "login": "bob"})
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()))
		resp, err := exec.Execute(context.Background(), httpx.Get(ts.URL+"/user").WithQuery("access_token", "tok"))
		require.NoError(t, err)
		require.True(t, resp.OK())
		require.Equal(t, "42", resp.Data.String("id"))
		require.Equal(t, "bob", resp.Data.String("login"))
	})

	t.Run("post form", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			require.Equal(t, "c1", r.PostForm.Get("code"))
			_, _ = fmt.Fprint(w, "access_token=tok&expires_in=3600")
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()))
		resp, err := exec.Execute(context.Background(),
			httpx.Post(ts.URL).WithForm("code", "c1").WithParser(httpx.ParseForm))
		require.NoError(t, err)
		require.Equal(t, "tok", resp.Data.String("access_token"))
		require.Equal(t, int64(3600), resp.Data.Int("expires_in"))
	})

	t.Run("body over the size limit", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, r.URL.Query().Get("body"))
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()), httpx.WithMaxBodySize(16))

		resp, err := exec.Execute(context.Background(),
			httpx.Get(ts.URL).WithQuery("body", "access_token=012").WithParser(httpx.ParseForm))
		require.NoError(t, err, "a body of exactly the limit is read whole")
		require.Equal(t, "012", resp.Data.String("access_token"))

		_, err = exec.Execute(context.Background(),
			httpx.Get(ts.URL).WithQuery("body", "access_token=0123").WithParser(httpx.ParseForm))
		require.ErrorIs(t, err, httpx.ErrBodyTooLarge)
		require.ErrorIs(t, err, httpx.ErrTransport)
	})

	t.Run("non-2xx json body is returned", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = fmt.Fprint(w, `{"message":"Bad credentials"}`)
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()))
		resp, err := exec.Execute(context.Background(), httpx.Get(ts.URL))
		require.NoError(t, err)
		require.False(t, resp.OK())
		require.Equal(t, "Bad credentials", resp.Data.String("message"))
	})

	t.Run("non-2xx unparseable body", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = fmt.Fprint(w, "<html>bad gateway</html>")
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()))
		resp, err := exec.Execute(context.Background(), httpx.Get(ts.URL))
		require.ErrorIs(t, err, httpx.ErrUnexpectedStatus)
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("2xx unparseable body", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "not json")
		}))
		defer ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()))
		_, err := exec.Execute(context.Background(), httpx.Get(ts.URL))
		require.ErrorIs(t, err, httpx.ErrDecode)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := ts.URL
		ts.Close()

		exec := httpx.NewHTTPExecutor(httpx.WithConnectTimeout(time.Second))
		_, err := exec.Execute(context.Background(), httpx.Get(addr))
		require.ErrorIs(t, err, httpx.ErrTransport)
	})
}

func TestHTTPExecutor_MaxRequests(t *testing.T) {
	t.Parallel()

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()

	exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()), httpx.WithMaxRequests(2))

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := exec.Execute(context.Background(), httpx.Get(ts.URL))
			require.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()
	require.Equal(t, int32(2), peak.Load())
}

func TestHTTPExecutor_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	defer close(block)

	exec := httpx.NewHTTPExecutor(httpx.WithHTTPClient(ts.Client()), httpx.WithMaxRequests(1))

	go func() { _, _ = exec.Execute(context.Background(), httpx.Get(ts.URL)) }()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := exec.Execute(ctx, httpx.Get(ts.URL))
	require.ErrorIs(t, err, httpx.ErrTransport)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutorFunc(t *testing.T) {
	t.Parallel()

	var calls int
	exec := httpx.ExecutorFunc(func(ctx context.Context, req httpx.Request) (*httpx.Response, error) {
		calls++
		return httpx.JSONResponse(http.StatusOK, `{"ok":true}`)
	})

	resp, err := exec.Execute(context.Background(), httpx.Get("https://example.com"))
	require.NoError(t, err)
	require.True(t, resp.Data.Bool("ok"))
	require.Equal(t, 1, calls)
}
