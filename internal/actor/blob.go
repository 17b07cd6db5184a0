// AngelaMos | 2026
// blob.go

package actor

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Blob is the binary transfer handle of the actor contract: raw bytes and a
// directly fetchable URL can both be obtained from it, and uploads may carry
// a progress callback reporting 0-100.
type Blob struct {
	data       []byte
	directURL  string
	onProgress func(percentage int)
	fetch      func(ctx context.Context) ([]byte, error)
}

func BlobFromBytes(data []byte) *Blob {
	return &Blob{data: data}
}

func BlobFromURL(url string) *Blob {
	return &Blob{
		directURL: url,
		fetch: func(ctx context.Context) ([]byte, error) {
			return fetchURL(ctx, url)
		},
	}
}

// WithUploadProgress returns a copy of the blob that reports upload progress
// through fn. Percentages are monotonic from 0 to 100.
func (b *Blob) WithUploadProgress(fn func(percentage int)) *Blob {
	clone := *b
	clone.onProgress = fn
	return &clone
}

// Bytes returns the raw content, fetching the direct URL when the bytes were
// not transferred inline.
func (b *Blob) Bytes(ctx context.Context) ([]byte, error) {
	if b.data != nil {
		return b.data, nil
	}

	if b.fetch == nil {
		return nil, NewError(CodeUnavailable, "file not available")
	}

	data, err := b.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blob: %w", err)
	}

	b.data = data
	return data, nil
}

func (b *Blob) DirectURL() string {
	return b.directURL
}

func (b *Blob) Size() int64 {
	return int64(len(b.data))
}

func (b *Blob) reportProgress(percentage int) {
	if b.onProgress == nil {
		return
	}

	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	b.onProgress(percentage)
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, NewError(
			CodeUnavailable,
			"fetch blob: unexpected status %d",
			resp.StatusCode,
		)
	}

	return io.ReadAll(resp.Body)
}

// progressReader reports read progress against a known total. It backs the
// upload side of the blob contract.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(percentage int)
}

func newProgressReader(
	r io.Reader,
	total int64,
	report func(percentage int),
) *progressReader {
	return &progressReader{r: r, total: total, report: report}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.report != nil && pr.total > 0 {
			pct := int(pr.read * 100 / pr.total)
			if pct > 100 {
				pct = 100
			}
			pr.report(pct)
		}
	}
	return n, err
}
