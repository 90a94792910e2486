package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// imageConcurrency bounds parallel image downloads per page. Images
// are the one place the crawl fans out; pages themselves stay on a
// single worker.
const imageConcurrency = 4

// maxImageSize caps a single image download.
const maxImageSize = 20 * 1024 * 1024

// ImageDownloader fetches the images referenced by a page into a
// directory next to the saved document. Failures are logged and
// skipped; a missing image never fails the page.
type ImageDownloader struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewImageDownloader creates an ImageDownloader with the given
// per-request timeout.
func NewImageDownloader(timeout time.Duration, userAgent string, logger *slog.Logger) *ImageDownloader {
	return &ImageDownloader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Download fetches each image URL into destDir, named by the last path
// segment. Downloads run concurrently up to a fixed limit; the first
// context cancellation stops the group.
func (d *ImageDownloader) Download(ctx context.Context, imageURLs []string, destDir string) {
	if len(imageURLs) == 0 {
		return
	}
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		d.logger.Warn("failed to create image directory", "dir", destDir, "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageConcurrency)

	for _, imageURL := range imageURLs {
		g.Go(func() error {
			if err := d.downloadOne(gctx, imageURL, destDir); err != nil {
				// Image failures are advisory only.
				d.logger.Warn("image download failed", "url", imageURL, "error", err)
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.Debug("image downloads interrupted", "error", err)
	}
}

// downloadOne fetches a single image to destDir.
func (d *ImageDownloader) downloadOne(ctx context.Context, imageURL, destDir string) error {
	name := imageFileName(imageURL)
	if name == "" {
		return fmt.Errorf("no usable file name in %s", imageURL)
	}

	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		// Already downloaded by an earlier page.
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, io.LimitReader(resp.Body, maxImageSize)); err != nil {
		file.Close()
		_ = os.Remove(dest)
		return err
	}
	return file.Close()
}

// imageFileName derives a safe file name from the image URL's last
// path segment.
func imageFileName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return ""
	}
	return name
}
