package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	pkgerrors "github.com/teklifbul/mukayese-backend/pkg/errors"
)

// ErrTemplateUnavailable is wrapped by every template load failure.
var ErrTemplateUnavailable = errors.New("template unavailable")

// TemplateSource yields the raw bytes of the workbook template.
type TemplateSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileTemplate reads the template from disk on every export.
type FileTemplate struct {
	Path    string
	Timeout time.Duration
}

func NewFileTemplate(path string, timeout time.Duration) (*FileTemplate, error) {
	if path == "" {
		return nil, fmt.Errorf("template path required")
	}
	return &FileTemplate{Path: path, Timeout: timeout}, nil
}

// Load returns the template bytes. A missing, empty or slow file is reported
// as CodeTemplate.
func (t *FileTemplate) Load(ctx context.Context) ([]byte, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(t.Path)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, templateUnavailable(t.Path, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, templateUnavailable(t.Path, res.err)
		}
		if len(res.data) == 0 {
			return nil, templateUnavailable(t.Path, errors.New("empty file"))
		}
		return res.data, nil
	}
}

// StaticTemplate serves bytes already in memory.
type StaticTemplate []byte

func (s StaticTemplate) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, templateUnavailable("memory", err)
	}
	if len(s) == 0 {
		return nil, templateUnavailable("memory", errors.New("empty template"))
	}
	return s, nil
}

func templateUnavailable(source string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeTemplate, fmt.Errorf("%w: %s: %v", ErrTemplateUnavailable, source, cause), "export template unavailable").
		WithDetails(map[string]any{"fallbackMode": "csv"})
}
