// Package fetch downloads game dumps over HTTP with resume support.
// Public dumps run to many gigabytes, so interrupted downloads pick up
// from the last byte on disk via range requests.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// Downloader handles downloading files with resume support.
type Downloader struct {
	client *http.Client
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		d.client = client
	}
}

// WithTimeout sets the timeout for HTTP operations.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		d.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// NewDownloader creates a new Downloader with sensible defaults.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: 0, // No overall timeout - dump downloads run for hours.
			Transport: &http.Transport{
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download starts downloading a URL, resuming from destPath if a partial
// file exists. Returns the response body, the total size, and the byte
// offset the body continues from.
func (d *Downloader) Download(ctx context.Context, url string, destPath string) (io.ReadCloser, int64, int64, error) {
	var existingSize int64
	if info, err := os.Stat(destPath); err == nil {
		existingSize = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("creating request: %w", err)
	}

	if existingSize > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", existingSize))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("downloading: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, 0, 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var totalSize int64
	if resp.StatusCode == http.StatusPartialContent {
		// Content-Range: bytes 0-999/1234
		contentRange := resp.Header.Get("Content-Range")
		if contentRange != "" {
			var start, end int64
			_, err := fmt.Sscanf(contentRange, "bytes %d-%d/%d", &start, &end, &totalSize)
			if err != nil {
				totalSize = existingSize + resp.ContentLength
			}
		}
	} else {
		totalSize = resp.ContentLength
		existingSize = 0 // Server didn't support range, start over.
	}

	return resp.Body, totalSize, existingSize, nil
}

// DownloadToFile downloads a URL directly to a file, appending to a
// partial file when the server honors the range request.
func (d *Downloader) DownloadToFile(ctx context.Context, url string, destPath string, progress func(downloaded, total int64)) error {
	body, totalSize, offset, err := d.Download(ctx, url, destPath)
	if err != nil {
		return err
	}
	defer body.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if offset > 0 {
		flags = os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(destPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	buf := make([]byte, 32*1024)
	downloaded := offset

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing file: %w", writeErr)
			}
			downloaded += int64(n)

			if progress != nil {
				progress(downloaded, totalSize)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
	}

	return nil
}

// GetContentLength gets the content length of a URL without downloading.
func (d *Downloader) GetContentLength(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	lengthStr := resp.Header.Get("Content-Length")
	if lengthStr == "" {
		return 0, nil
	}

	return strconv.ParseInt(lengthStr, 10, 64)
}
