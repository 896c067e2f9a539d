package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"081234567890":      "6281234567890",
		"+62 812-3456-7890": "6281234567890",
		"6281234567890":     "6281234567890",
		"81234567890":       "6281234567890",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestPaymentReminder(t *testing.T) {
	due := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	msg := PaymentReminder("Budi", "101", 1500000, due)

	assert.Contains(t, msg, "Halo Budi")
	assert.Contains(t, msg, "kamar 101")
	assert.Contains(t, msg, "Rp 1.500.000")
	assert.Contains(t, msg, "10 Maret 2025")
}

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{Enabled: true, APIURL: srv.URL, Token: "tok", RatePerMinute: 600}, nil)
	ok, err := client.Send(context.Background(), "0812-3456-7890", "hi")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "6281234567890", got.Phone)
	assert.Equal(t, "hi", got.Message)
}

func TestSend_Failures(t *testing.T) {
	disabled := NewClient(Config{Enabled: false}, nil)
	ok, err := disabled.Send(context.Background(), "0812", "hi")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDisabled)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(Config{Enabled: true, APIURL: srv.URL, RatePerMinute: 600}, nil)
	ok, err = client.Send(context.Background(), "0812", "hi")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"connected":true}`))
	}))
	defer srv.Close()

	assert.Equal(t, Status{Enabled: true, Connected: true},
		NewClient(Config{Enabled: true, APIURL: srv.URL}, nil).Status(context.Background()))
	assert.Equal(t, Status{Enabled: true, Connected: false},
		NewClient(Config{Enabled: true, APIURL: "http://127.0.0.1:1"}, nil).Status(context.Background()))
	assert.Equal(t, Status{}, NewClient(Config{}, nil).Status(context.Background()))
}
