package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_BuildsQuickSendQuery(t *testing.T) {
	var (
		mu  sync.Mutex
		got url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = r.URL.Query()
		mu.Unlock()
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client := NewQuickSendClient(Config{
		BaseURL:   srv.URL,
		UserEmail: "admin@example.com",
		APIKey:    "key-123",
		SenderID:  "EDUS",
	})

	err := client.Send(context.Background(), "0701234567", "Dear Alice, paid Rs. 2500.00 & thanks")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "SEND_SINGLE", got.Get("FUN"))
	assert.Equal(t, "true", got.Get("with_get"))
	assert.Equal(t, "admin@example.com", got.Get("un"))
	assert.Equal(t, "key-123", got.Get("up"))
	assert.Equal(t, "EDUS", got.Get("senderID"))
	assert.Equal(t, "0701234567", got.Get("to"))
	assert.Equal(t, "Dear Alice, paid Rs. 2500.00 & thanks", got.Get("msg"))
}

func TestSend_MissingCredentials(t *testing.T) {
	client := NewQuickSendClient(Config{BaseURL: "http://127.0.0.1:0"})

	err := client.Send(context.Background(), "0701234567", "hello")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestSend_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewQuickSendClient(Config{BaseURL: srv.URL, UserEmail: "u", APIKey: "k"})

	err := client.Send(context.Background(), "0701234567", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewQuickSendClient_DefaultSender(t *testing.T) {
	client := NewQuickSendClient(Config{UserEmail: "u", APIKey: "k"})
	assert.Equal(t, "QKSendDemo", client.senderID)
}
