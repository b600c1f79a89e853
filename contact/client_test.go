package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSend(t *testing.T) {
	var got Submission
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Response{Success: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBearerToken("anon-key"))
	err := c.Send(context.Background(), Submission{Name: "Anna", Email: "anna@example.se", Company: "Acme", Message: "Hej"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "Bearer anon-key", auth)
}

func TestClientSendNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(Response{Error: "Too many requests."})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Send(context.Background(), Submission{Name: "Anna"})
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusTooManyRequests, re.StatusCode)
	assert.Equal(t, "Too many requests.", re.Message)
}

func TestClientSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url).Send(context.Background(), Submission{Name: "Anna"})
	assert.Error(t, err)
}
