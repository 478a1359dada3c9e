package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMessaging_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMessaging(reg)

	m.Observe("send_message", time.Now(), nil)
	m.Observe("send_message", time.Now(), nil)
	m.Observe("send_message", time.Now(), errors.New("x"))
	m.Divergence("send_message")

	require.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("send_message", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("send_message", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.divergences.WithLabelValues("send_message")))
}

func TestMessaging_NilIsNoop(t *testing.T) {
	var m *Messaging
	m.Observe("x", time.Now(), nil)
	m.Divergence("x")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMessaging(reg).Observe("create_conversation", time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), `messenger_operations_total{op="create_conversation",result="ok"} 1`))
}
