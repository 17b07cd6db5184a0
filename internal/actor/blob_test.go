// AngelaMos | 2026
// blob_test.go

package actor

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobFromBytes(t *testing.T) {
	payload := []byte("pdf bytes")
	blob := BlobFromBytes(payload)

	data, err := blob.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, int64(len(payload)), blob.Size())
	assert.Empty(t, blob.DirectURL())
}

func TestBlobFromURLFetchesOnDemand(t *testing.T) {
	payload := []byte("%PDF-1.7 content")
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			//nolint:errcheck // test server
			_, _ = w.Write(payload)
		},
	))
	defer srv.Close()

	blob := BlobFromURL(srv.URL)
	assert.Equal(t, srv.URL, blob.DirectURL())

	data, err := blob.Bytes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestBlobWithoutContentReportsUnavailable(t *testing.T) {
	blob := &Blob{}

	_, err := blob.Bytes(context.Background())
	require.Error(t, err)

	var actorErr *Error
	require.ErrorAs(t, err, &actorErr)
	assert.Equal(t, CodeUnavailable, actorErr.Code)
}

func TestWithUploadProgressClones(t *testing.T) {
	original := BlobFromBytes([]byte("data"))

	var seen []int
	clone := original.WithUploadProgress(func(pct int) {
		seen = append(seen, pct)
	})

	require.NotSame(t, original, clone)
	assert.Nil(t, original.onProgress)

	clone.reportProgress(-5)
	clone.reportProgress(50)
	clone.reportProgress(250)
	assert.Equal(t, []int{0, 50, 100}, seen)

	// The original stays silent.
	original.reportProgress(50)
	assert.Len(t, seen, 3)
}

func TestProgressReaderReportsPercentages(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 100)

	var last int
	pr := newProgressReader(
		bytes.NewReader(payload),
		int64(len(payload)),
		func(pct int) { last = pct },
	)

	buf := make([]byte, 30)
	read := 0
	for {
		n, err := pr.Read(buf)
		read += n
		if err != nil {
			break
		}
	}

	assert.Equal(t, len(payload), read)
	assert.Equal(t, 100, last)
}
