package render

import (
	"os"
	"path/filepath"
	"strings"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"

	"github.com/go-pdf/fpdf"
)

// wrapWidth is the character count a rendered line is wrapped at. The core
// Arial font is not monospaced, so this is a conservative bound that keeps
// every wrapped chunk inside the printable area at the default font size.
const wrapWidth = 100

const defaultFontSize = 11.0

// PDF renders tailored resume text into a one-column PDF document.
type PDF struct {
	cfg    *config.RenderConfig
	logger *errors.Logger
}

// NewPDF creates a renderer writing into the configured output directory.
func NewPDF(cfg *config.RenderConfig, logger *errors.Logger) *PDF {
	return &PDF{cfg: cfg, logger: logger}
}

// Render writes the text to <outputDir>/<filename> and returns the full path.
// Characters outside latin-1 are substituted by the font translator rather
// than failing the render.
func (p *PDF) Render(text, filename string) (string, error) {
	fontSize := p.cfg.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	doc.SetFont("Arial", "", fontSize)
	translate := doc.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(text, "\n") {
		chunks := wrapLine(line, wrapWidth)
		if len(chunks) == 0 {
			doc.Ln(5)
			continue
		}
		for _, chunk := range chunks {
			doc.CellFormat(0, 10, translate(chunk), "", 1, "", false, 0, "")
		}
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0o750); err != nil {
		return "", errors.NewIOError(errors.ErrCodeRenderFailed,
			"Failed to create render output directory", err)
	}

	path := filepath.Join(p.cfg.OutputDir, filename)
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", errors.NewIOError(errors.ErrCodeRenderFailed,
			"Failed to write PDF document", err)
	}

	p.logger.Debug("PDF rendered",
		"path", path,
		"lines", strings.Count(text, "\n")+1)

	return path, nil
}

// wrapLine splits a line on word boundaries into chunks of at most width
// characters. A blank or whitespace-only line yields no chunks. Words longer
// than the width are hard-split so nothing overflows the page.
func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, word := range words {
		for len(word) > width {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, word[:width])
			word = word[width:]
		}
		if current.Len() == 0 {
			current.WriteString(word)
			continue
		}
		if current.Len()+1+len(word) > width {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(word)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
