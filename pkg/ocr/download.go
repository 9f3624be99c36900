package ocr

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// MaxDownload caps the size of a remote screenshot in bytes.
var MaxDownload int64 = 20 << 20

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Download fetches the screenshot at rawURL into dir and returns the local
// path. The file keeps the URL's extension so size-based reduction can tell
// JPEGs apart.
func Download(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBadURL, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", upstream(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Messages: []string{fmt.Sprintf("download %s: %s", u.Host, resp.Status)}}
	}
	if resp.ContentLength > MaxDownload {
		return "", ErrTooLarge
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if !SupportedExt("x" + ext) {
		ext = extFromContentType(resp.Header.Get("Content-Type"))
	}
	f, err := os.CreateTemp(dir, "dl-*"+ext)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, MaxDownload+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxDownload {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func extFromContentType(ct string) string {
	mt, _, _ := mime.ParseMediaType(ct)
	switch mt {
	case "image/jpeg":
		return ".jpeg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}
