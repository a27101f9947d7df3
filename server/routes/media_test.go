// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedia(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images", "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "2024", "cat.png"), []byte("png"), 0o644))

	handler := Media(root)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/images/2024/cat.png", wantStatus: http.StatusOK, wantBody: "png"},
		{path: "/images/2024/dog.png", wantStatus: http.StatusNotFound},
		{path: "/images/2024", wantStatus: http.StatusNotFound},
		{path: "/", wantStatus: http.StatusNotFound},
		{path: "/../secret", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.URL.Path = tt.path

			rec := httptest.NewRecorder()
			require.NoError(t, handler(rec, req))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestPathID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value  string
		wantID int64
		wantOK bool
	}{
		{value: "12", wantID: 12, wantOK: true},
		{value: "0"},
		{value: "-3"},
		{value: "abc"},
		{value: ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.SetPathValue("id", tt.value)

		id, ok := pathID(req, "id")

		assert.Equal(t, tt.wantID, id, tt.value)
		assert.Equal(t, tt.wantOK, ok, tt.value)
	}
}
