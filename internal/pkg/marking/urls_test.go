package marking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/assessai/internal/pkg/cache"
)

const testPage = `<html><head><title> Test Page </title><meta name="description" content="A test page"></head>
<body><p>Cloud computing platforms provide elastic resources.</p><p>Second paragraph.</p></body></html>`

// newTestAnalyzer allows loopback so httptest servers can be reached
func newTestAnalyzer(c cache.Cache) *HTTPAnalyzer {
	return NewHTTPAnalyzer(&http.Client{}, c, AnalyzerConfig{
		Timeout:   2 * time.Second,
		UserAgent: "assessai-test-agent",
		CacheTTL:  time.Minute,
	}, zerolog.Nop())
}

func TestHTTPAnalyzer_AnalyzeURL(t *testing.T) {
	var hits int32
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		userAgent.Store(r.UserAgent())
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	analyzer := newTestAnalyzer(cache.NewMemoryCache())

	analysis := analyzer.AnalyzeURL(context.Background(), srv.URL+"/article")

	assert.False(t, analysis.Failed())
	assert.Equal(t, srv.URL+"/article", analysis.URL)
	assert.Equal(t, "Test Page", analysis.Title)
	assert.Equal(t, "A test page", analysis.MetaDescription)
	assert.Equal(t, "Cloud computing platforms provide elastic resources. Second paragraph. ", analysis.ContentSample)
	assert.Equal(t, []string{"cloud computing platforms provide", "elastic resources", "second paragraph"}, analysis.KeyPhrases)
	assert.Equal(t, "assessai-test-agent", userAgent.Load())

	// served from cache the second time
	again := analyzer.AnalyzeURL(context.Background(), srv.URL+"/article")
	assert.Equal(t, analysis, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPAnalyzer_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	analysis := newTestAnalyzer(nil).AnalyzeURL(context.Background(), srv.URL)

	assert.True(t, analysis.Failed())
	assert.Equal(t, StatusFailed, analysis.Status)
	assert.Contains(t, analysis.Error, "404")
	assert.Equal(t, srv.URL, analysis.URL)
}

func TestHTTPAnalyzer_Unreachable(t *testing.T) {
	analysis := newTestAnalyzer(nil).AnalyzeURL(context.Background(), "http://127.0.0.1:1/nothing")
	assert.True(t, analysis.Failed())
	assert.NotEmpty(t, analysis.Error)
}

func TestHTTPAnalyzer_NoTitleAndLongContent(t *testing.T) {
	long := strings.Repeat("word ", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer srv.Close()

	analysis := newTestAnalyzer(nil).AnalyzeURL(context.Background(), srv.URL)

	require.False(t, analysis.Failed())
	assert.Equal(t, "No title", analysis.Title)
	assert.Len(t, analysis.ContentSample, 503)
	assert.True(t, strings.HasSuffix(analysis.ContentSample, "..."))
}

func TestHTTPAnalyzer_FailuresAreNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	analyzer := newTestAnalyzer(cache.NewMemoryCache())
	analyzer.AnalyzeURL(context.Background(), srv.URL)
	analyzer.AnalyzeURL(context.Background(), srv.URL)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPAnalyzer_DefaultClientRefusesInternalAddresses(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("<html><head><title>internal-admin</title></head><body><p>secret token</p></body></html>"))
	}))
	defer srv.Close()

	analyzer := NewHTTPAnalyzer(nil, nil, AnalyzerConfig{Timeout: 2 * time.Second}, zerolog.Nop())
	analysis := analyzer.AnalyzeURL(context.Background(), srv.URL+"/admin")

	assert.True(t, analysis.Failed())
	assert.Contains(t, analysis.Error, ErrBlockedAddress.Error())
	assert.Empty(t, analysis.Title)
	assert.Empty(t, analysis.ContentSample)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestHTTPAnalyzer_RedirectToInternalAddressIsRefused(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>internal</title></head></html>"))
	}))
	defer internal.Close()

	client := NewPublicHTTPClient(2 * time.Second)
	resp, err := client.Get(internal.URL)
	if resp != nil {
		resp.Body.Close()
	}
	assert.ErrorIs(t, err, ErrBlockedAddress)
}

func TestIsBlockedAddr(t *testing.T) {
	tests := []struct {
		addr    string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"172.16.0.1", true},
		{"192.168.1.10", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"::ffff:127.0.0.1", true},
		{"93.184.216.34", false},
		{"2606:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.blocked, isBlockedAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}
