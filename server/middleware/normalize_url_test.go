// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		method           string
		requestURL       string
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:           "Root path should not redirect",
			requestURL:     "/",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Path without trailing slash should not redirect",
			requestURL:     "/images/ranking",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Directory index keeps its slash",
			requestURL:     "/images/",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Bare directory gains a slash",
			requestURL:       "/account?x=1",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/account/?x=1",
		},
		{
			name:             "Path with trailing slash should redirect",
			requestURL:       "/account/login/?next=/images/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/account/login?next=/images/",
		},
		{
			name:             "Form post keeps its method through the redirect",
			method:           http.MethodPost,
			requestURL:       "/images/like/3/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/images/like/3",
		},
		{
			name:           "Static directories are left alone",
			requestURL:     "/media/images/",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}

			handler := Wrap(NormalizeURL, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(method, tt.requestURL, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)

			if tt.expectedLocation != "" {
				assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
			}
		})
	}
}
