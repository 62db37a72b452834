package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ghstatus-dashboard/internal/usecase/incident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>GitHub Status</title></feed>`

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.URL = url
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestHTTPFetcher_FetchRaw_Success(t *testing.T) {
	var gotUA, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig(server.URL))
	body, err := f.FetchRaw(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, sampleFeed, body)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, server.URL, f.URL())
}

func TestHTTPFetcher_FetchRaw_Non2xx(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", code)
			}))
			defer server.Close()

			_, err := NewHTTPFetcher(testConfig(server.URL)).FetchRaw(context.Background(), server.URL)

			require.Error(t, err)
			assert.True(t, errors.Is(err, incident.ErrFeedFetchFailed))
			assert.True(t, errors.Is(err, ErrUnexpectedStatus))
		})
	}
}

func TestHTTPFetcher_FetchRaw_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxBodySize = 1024
	_, err := NewHTTPFetcher(cfg).FetchRaw(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
	assert.True(t, errors.Is(err, incident.ErrFeedFetchFailed))
}

func TestHTTPFetcher_FetchRaw_ExactlyMaxBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxBodySize = 1024
	body, err := NewHTTPFetcher(cfg).FetchRaw(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, body, 1024)
}

func TestHTTPFetcher_FetchRaw_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	_, err := NewHTTPFetcher(cfg).FetchRaw(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(err, incident.ErrFeedFetchFailed))
}

func TestHTTPFetcher_FetchRaw_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPFetcher(testConfig(server.URL)).FetchRaw(ctx, server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestHTTPFetcher_FetchRaw_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(DefaultConfig())

	for _, u := range []string{"ftp://example.com/feed", "https://", "::::"} {
		t.Run(u, func(t *testing.T) {
			_, err := f.FetchRaw(context.Background(), u)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidURL))
			assert.True(t, errors.Is(err, incident.ErrFeedFetchFailed))
		})
	}
}

func TestHTTPFetcher_FetchRaw_DenyPrivateIPs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.DenyPrivateIPs = true
	_, err := NewHTTPFetcher(cfg).FetchRaw(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrivateIP))
}

func TestHTTPFetcher_FetchRaw_Redirects(t *testing.T) {
	var hops atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed" {
			_, _ = w.Write([]byte(sampleFeed))
			return
		}
		hops.Add(1)
		http.Redirect(w, r, server.URL+"/feed", http.StatusFound)
	}))
	defer server.Close()

	t.Run("followed", func(t *testing.T) {
		body, err := NewHTTPFetcher(testConfig(server.URL)).FetchRaw(context.Background(), server.URL+"/old")
		require.NoError(t, err)
		assert.Equal(t, sampleFeed, body)
		assert.Equal(t, int32(1), hops.Load())
	})

	t.Run("limit zero refuses", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.MaxRedirects = 0
		_, err := NewHTTPFetcher(cfg).FetchRaw(context.Background(), server.URL+"/old")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooManyRedirects))
	})
}

func TestHTTPFetcher_FetchesEveryCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig(server.URL))
	for i := 0; i < 3; i++ {
		_, err := f.FetchRaw(context.Background(), server.URL)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestNewHTTPFetcher_FillsZeroValues(t *testing.T) {
	f := NewHTTPFetcher(Config{URL: DefaultFeedURL})

	assert.Equal(t, DefaultConfig().Timeout, f.config.Timeout)
	assert.Equal(t, DefaultConfig().MaxBodySize, f.config.MaxBodySize)
	assert.Equal(t, DefaultUserAgent, f.config.UserAgent)
}

func TestHTTPFetcher_CircuitBreaker(t *testing.T) {
	f := NewHTTPFetcher(testConfig("https://www.githubstatus.com/history.atom"))

	cb := f.CircuitBreaker()
	if assert.NotNil(t, cb) {
		assert.Equal(t, "status-feed", cb.Name())
		assert.False(t, cb.IsOpen())
	}
}
