package profile

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"testing"

	"jobpilot/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelError)

type fakeEmbedder struct {
	vector []float64
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float64, error) {
	return f.vector, nil
}

func TestExtractTextMissingFile(t *testing.T) {
	_, err := ExtractText(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing resume file")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeFileNotFound {
		t.Errorf("expected code %s, got %s", errors.ErrCodeFileNotFound, appErr.Code)
	}
}

func TestEncodeFailsFastOnUnreadableResume(t *testing.T) {
	encoder := NewEncoder(&fakeEmbedder{vector: []float64{1, 0}}, testLogger)

	_, err := encoder.Encode(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for unreadable resume")
	}
}
