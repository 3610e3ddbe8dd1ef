package certificate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// TemplateSource supplies the background PNG the certificate is rendered
// onto. A deployment uses either a remote URL or a file on disk.
type TemplateSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type HTTPTemplateSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPTemplateSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

type FileTemplateSource struct {
	Path string
}

func (s *FileTemplateSource) Fetch(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.Path)
}
