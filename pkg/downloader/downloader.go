// Package downloader fetches catalogue file sources to local disk.
// HTTP(S) urls are served directly by the catalogue's distribution
// endpoints; s3 urls cover datasets distributed from object storage.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrUnsupportedScheme is returned for urls the downloader cannot
// handle.
var ErrUnsupportedScheme = errors.New("downloader: unsupported url scheme")

// ProgressFunc reports transferred bytes. total is -1 when the server
// does not announce a length.
type ProgressFunc func(downloaded, total int64)

// Downloader writes remote files to disk. The zero value is usable and
// downloads over http.DefaultClient.
type Downloader struct {
	// Client overrides the HTTP client used for http(s) urls.
	Client *http.Client
}

// Download fetches rawURL into destPath, creating parent directories
// as needed. The file is written next to its destination and renamed
// into place once complete, so a failed or canceled download never
// leaves a partial file behind.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string, progress ProgressFunc) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("downloader: parsing url: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("downloader: creating destination directory: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return d.downloadHTTP(ctx, rawURL, destPath, progress)
	case "s3":
		return d.downloadS3(ctx, u, destPath, progress)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func (d *Downloader) httpClient() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return http.DefaultClient
}

func (d *Downloader) downloadHTTP(ctx context.Context, rawURL, destPath string, progress ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("downloader: creating request: %w", err)
	}

	resp, err := d.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("downloader: fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloader: fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	return writeFile(ctx, destPath, resp.Body, resp.ContentLength, progress)
}

func (d *Downloader) downloadS3(ctx context.Context, u *url.URL, destPath string, progress ProgressFunc) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("downloader: loading AWS config: %w", err)
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")

	result, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("downloader: fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	total := int64(-1)
	if result.ContentLength != nil {
		total = *result.ContentLength
	}
	return writeFile(ctx, destPath, result.Body, total, progress)
}

// writeFile streams src into a sibling temp file and renames it to
// destPath on success.
func writeFile(ctx context.Context, destPath string, src io.Reader, total int64, progress ProgressFunc) (err error) {
	tmp := destPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("downloader: creating destination file: %w", err)
	}
	defer func() {
		out.Close()
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if progress != nil {
		progress(0, total)
	}
	if err = copyWithProgress(ctx, out, src, total, progress); err != nil {
		return fmt.Errorf("downloader: writing %s: %w", destPath, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("downloader: closing %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, destPath); err != nil {
		return fmt.Errorf("downloader: moving file into place: %w", err)
	}
	return nil
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	buf := make([]byte, 32*1024)
	var written int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			w, writeErr := dst.Write(buf[:n])
			if writeErr != nil {
				return writeErr
			}
			if w != n {
				return io.ErrShortWrite
			}
			written += int64(w)
			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}
