package hrapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		_ = r.ParseForm()
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/tenants/1/employees/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ID":7,"LastName":"Петров","FirstName":"Пётр","MiddleName":"","Department":"ИТ","FireDate":null}`))
	})
	mux.HandleFunc("/api/tenants/1/employees/8", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/tenants/1/employees/9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return httptest.NewServer(mux)
}

func TestProvider_GetEmployee(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls)
	defer srv.Close()

	p := New(srv.URL, "svc", "secret", 5*time.Second, zap.NewNop())

	e, err := p.GetEmployee(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Петров Пётр", e.FullName)
	assert.True(t, e.IsActive)

	missing, err := p.GetEmployee(context.Background(), 1, 8)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = p.GetEmployee(context.Background(), 1, 9)
	assert.Error(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "токен кешируется")
}
