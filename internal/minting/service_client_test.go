package minting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceClientMint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req mintServiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "evt-1", req.EventID)
		assert.Equal(t, "Buyer111", req.BuyerWallet)

		json.NewEncoder(w).Encode(mintServiceResponse{
			Success:     true,
			MintAddress: "NewMint111",
		})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	result, err := client.Mint(context.Background(), MintRequest{
		EventID:     "evt-1",
		EventName:   "Launch Party",
		BuyerWallet: "Buyer111",
	})
	require.NoError(t, err)
	assert.Equal(t, "NewMint111", result.MintAddress)
}

func TestServiceClientMintServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(mintServiceResponse{
			Success: false,
			Error:   "metadata upload failed",
		})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	_, err := client.Mint(context.Background(), MintRequest{EventID: "evt-1", BuyerWallet: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata upload failed")
}

func TestServiceClientMintMissingAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mintServiceResponse{Success: true})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL)
	_, err := client.Mint(context.Background(), MintRequest{EventID: "evt-1", BuyerWallet: "B"})
	require.Error(t, err)
}

// A response from the service, even a failure, must not be retried: the
// mint may have gone through.
func TestServiceClientNoRetryAfterResponse(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(mintServiceResponse{Success: false, Error: "rpc timeout"})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, WithMaxRetries(3))
	_, err := client.Mint(context.Background(), MintRequest{EventID: "evt-1", BuyerWallet: "B"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestServiceClientRetriesTransportFailure(t *testing.T) {
	// A closed server makes every request fail before a response exists.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := NewServiceClient(endpoint,
		WithMaxRetries(1),
		WithRetryDelay(10*time.Millisecond),
		WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := client.Mint(context.Background(), MintRequest{EventID: "evt-1", BuyerWallet: "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
}
