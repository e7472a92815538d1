package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"081234567890", "6281234567890"},
		{"0812-3456-7890", "6281234567890"},
		{"+62 812 3456 7890", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in))
	}
}

func TestFonnteClientSend(t *testing.T) {
	var gotAuth, gotTarget, gotMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotTarget = r.FormValue("target")
		gotMessage = r.FormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewFonnteClient(srv.URL, "token-123", time.Second)
	err := client.Send(context.Background(), "081234567890", "halo")
	require.NoError(t, err)
	assert.Equal(t, "token-123", gotAuth)
	assert.Equal(t, "6281234567890", gotTarget)
	assert.Equal(t, "halo", gotMessage)
}

func TestFonnteClientSendGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream busy")) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewFonnteClient(srv.URL, "token-123", time.Second)
	err := client.Send(context.Background(), "081234567890", "halo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream busy")
}
