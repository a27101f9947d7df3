// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package requests fetches remote pages and images on behalf of users.

Every exchange is audited as a span. Successful page fetches are kept in a
compressed LRU cache; image downloads are never cached.
*/
package requests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"codeberg.org/pinmark/pinmark/config"
	"codeberg.org/pinmark/pinmark/core/audit"
	"codeberg.org/pinmark/pinmark/core/idgen"
	"codeberg.org/pinmark/pinmark/server/request_context"
)

var (
	// ErrTooLarge is returned when a body exceeds the allowed size.
	ErrTooLarge = errors.New("response body too large")

	// ErrForbiddenAddress is returned when a URL resolves to a private network.
	ErrForbiddenAddress = errors.New("refusing to connect to a private address")

	errUnsupportedScheme = errors.New("only http and https URLs can be fetched")
)

// maxPageSize bounds HTML pages read for image discovery.
const maxPageSize = 5 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string // final URL after redirects
}

// ContentType returns the media type without parameters.
func (resp *Response) ContentType() string {
	ct, _, _ := strings.Cut(resp.Header.Get("Content-Type"), ";")

	return strings.ToLower(strings.TrimSpace(ct))
}

// HTTPClient is used for all outgoing requests.
var HTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   guardDial,
		}).DialContext,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	},
}

// guardDial rejects connections to loopback, private and link-local
// addresses unless fetch.allowPrivateNetworks is set. It runs after DNS
// resolution, so hostnames pointing at internal services are caught too.
func guardDial(_, address string, _ syscall.RawConn) error {
	if config.Global.Fetch.AllowPrivateNetworks {
		return nil
	}

	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
	}

	return nil
}

// GetPage fetches an HTML page, consulting the cache first.
func GetPage(ctx context.Context, rawURL string) (*Response, error) {
	if resp, ok := cachedResponse(rawURL); ok {
		return resp, nil
	}

	resp, err := fetch(ctx, rawURL, maxPageSize)
	if err != nil {
		return nil, err
	}

	storeResponse(rawURL, resp)

	return resp, nil
}

// Download fetches rawURL, failing with ErrTooLarge beyond maxSize bytes.
func Download(ctx context.Context, rawURL string, maxSize int64) (*Response, error) {
	return fetch(ctx, rawURL, maxSize)
}

func fetch(ctx context.Context, rawURL string, maxSize int64) (_ *Response, err error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, errUnsupportedScheme
	}

	if config.Global.Fetch.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, config.Global.Fetch.Timeout)
		defer cancel()
	}

	span := audit.Span{
		Destination: audit.ToRemote,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + idgen.Make(),
		Method:      http.MethodGet,
		URL:         rawURL,
	}

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	ctx = span.Begin(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", config.Global.Fetch.UserAgent)

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	if resp.ContentLength > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxSize)
	}

	span.Size = len(body)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		URL:        resp.Request.URL.String(),
	}, nil
}
