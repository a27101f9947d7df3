// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/requests"
)

func TestMain(m *testing.M) {
	config.Global.Fetch.AllowPrivateNetworks = true
	config.Global.Fetch.Timeout = 5 * time.Second
	config.Global.Fetch.UserAgent = "pinmark-test"
	config.Global.Cache.Enabled = true
	config.Global.Cache.Size = 8
	config.Global.Cache.TTL = time.Minute

	if err := requests.Setup(); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func TestGetPageIsCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "pinmark-test", r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>Hi</title></html>"))
	}))
	t.Cleanup(srv.Close)

	for range 3 {
		resp, err := requests.GetPage(context.Background(), srv.URL+"/page")
		require.NoError(t, err)
		assert.Equal(t, "text/html", resp.ContentType())
		assert.Contains(t, string(resp.Body), "<title>Hi</title>")
	}

	assert.Equal(t, int32(1), hits.Load())

	assert.True(t, requests.Invalidate(srv.URL+"/page"))

	_, err := requests.GetPage(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.NotFound(w, nil)
	}))
	t.Cleanup(srv.Close)

	for range 2 {
		_, err := requests.GetPage(context.Background(), srv.URL)

		var statusErr *requests.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	}

	assert.Equal(t, int32(2), hits.Load())
}

func TestDownloadSizeLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	t.Cleanup(srv.Close)

	resp, err := requests.Download(context.Background(), srv.URL+"/a.png", 100)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 100)
	assert.Equal(t, "image/png", resp.ContentType())

	_, err = requests.Download(context.Background(), srv.URL+"/a.png", 99)
	require.ErrorIs(t, err, requests.ErrTooLarge)
}

func TestUnsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := requests.Download(context.Background(), "file:///etc/passwd", 10)
	require.Error(t, err)

	_, err = requests.GetPage(context.Background(), "ftp://example.com/")
	require.Error(t, err)
}

func TestPrivateAddressesRejected(t *testing.T) {
	// mutates config.Global, so not parallel
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("secret"))
	}))
	t.Cleanup(srv.Close)

	config.Global.Fetch.AllowPrivateNetworks = false
	t.Cleanup(func() { config.Global.Fetch.AllowPrivateNetworks = true })

	_, err := requests.Download(context.Background(), srv.URL, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, requests.ErrForbiddenAddress), err)
}
