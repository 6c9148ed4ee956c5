package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FACEGATE/models"
)

func descriptorOf(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = float64(i) / float64(n)
	}
	return d
}

func TestClientExtract(t *testing.T) {
	want := descriptorOf(models.DescriptorSize)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)

		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "frame-bytes", req.Image)

		json.NewEncoder(w).Encode(extractResponse{FaceFound: true, Descriptor: want})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).Extract(context.Background(), "frame-bytes")
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-9)
}

func TestClientExtractNoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{FaceFound: false})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), "frame-bytes")
	assert.ErrorIs(t, err, ErrNoFace)
}

func TestClientExtractBadDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{FaceFound: true, Descriptor: descriptorOf(64)})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Extract(context.Background(), "frame-bytes")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFace)
}

func TestClientExtractRespectsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL).Extract(ctx, "frame-bytes")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
