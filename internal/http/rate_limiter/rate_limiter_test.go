package rate_limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LimitsPerClient(t *testing.T) {
	l := New(0.001, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}

func TestCleanup_RemovesIdleVisitors(t *testing.T) {
	l := New(1, 1)
	l.GetVisitor("10.0.0.1")
	l.GetVisitor("10.0.0.2")
	assert.Equal(t, 2, l.Visitors())

	l.Cleanup(time.Hour)
	assert.Equal(t, 2, l.Visitors())

	time.Sleep(5 * time.Millisecond)
	l.Cleanup(time.Millisecond)
	assert.Equal(t, 0, l.Visitors())
}
