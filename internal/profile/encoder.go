package profile

import (
	"bytes"
	"context"
	"os"
	"strings"

	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"github.com/ledongthuc/pdf"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
}

// Encoder builds a Profile from a resume PDF: text extraction followed by
// embedding. Both steps fail fast; a run cannot proceed without a readable
// resume.
type Encoder struct {
	embedder Embedder
	logger   *errors.Logger
}

// NewEncoder creates a profile encoder over the given embedder.
func NewEncoder(embedder Embedder, logger *errors.Logger) *Encoder {
	return &Encoder{embedder: embedder, logger: logger}
}

// Encode extracts the resume text and embeds it.
func (e *Encoder) Encode(ctx context.Context, pdfPath string) (types.Profile, error) {
	text, err := ExtractText(pdfPath)
	if err != nil {
		return types.Profile{}, err
	}

	embedding, err := e.embedder.EmbedText(ctx, text)
	if err != nil {
		return types.Profile{}, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to embed resume text", err)
	}

	e.logger.Debug("Profile encoded",
		"resume_path", pdfPath,
		"text_length", len(text),
		"embedding_dimensions", len(embedding))

	return types.Profile{
		ResumePath: pdfPath,
		Text:       text,
		Embedding:  embedding,
	}, nil
}

// ExtractText pulls the plain text out of a PDF file. An unreadable or empty
// document is an error.
func ExtractText(pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotFound,
			"Resume file not found: "+pdfPath, err)
	}

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to open resume PDF: "+pdfPath, err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to extract text from resume PDF: "+pdfPath, err)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to read resume PDF text: "+pdfPath, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Resume PDF contains no extractable text: "+pdfPath, nil)
	}

	return text, nil
}
