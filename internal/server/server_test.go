package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	err error
}

func (f fakeDB) PingContext(context.Context) error { return f.err }

func get(s *Server, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       HealthChecker
		status   int
		database string
	}{
		{"no database", nil, http.StatusOK, "disabled"},
		{"database up", fakeDB{}, http.StatusOK, "connected"},
		{"database down", fakeDB{err: errors.New("refused")}, http.StatusServiceUnavailable, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(":0", tc.db, Options{Mode: "release"})
			resp := get(s, "/health", nil)
			require.Equal(t, tc.status, resp.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			if tc.database != "" {
				require.Equal(t, tc.database, body["database"])
			} else {
				require.Equal(t, "unhealthy", body["status"])
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	s := New(":0", nil, Options{})

	resp := get(s, "/health", nil)
	minted := resp.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(minted)
	require.NoError(t, err)

	supplied := uuid.NewString()
	resp = get(s, "/health", http.Header{RequestIDHeader: {supplied}})
	require.Equal(t, supplied, resp.Header().Get(RequestIDHeader))

	resp = get(s, "/health", http.Header{RequestIDHeader: {"not-a-uuid"}})
	require.NotEqual(t, "not-a-uuid", resp.Header().Get(RequestIDHeader))
}

func TestMaxBodySize(t *testing.T) {
	s := New(":0", nil, Options{MaxBodyBytes: 16})
	s.Engine.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(`{"a":1}`))
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, small)
	require.Equal(t, http.StatusOK, resp.Code)

	large := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	resp = httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, large)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}
