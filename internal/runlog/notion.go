package runlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"
)

// Publisher posts run logs to a Notion page. It is strictly best-effort: a
// failed publish is logged and swallowed because the run's outcome is already
// recorded in the application store.
type Publisher struct {
	cfg    *config.NotionConfig
	client *http.Client
	logger *errors.Logger
	now    func() time.Time
}

// NewPublisher returns nil when the integration is disabled; a nil Publisher
// is safe to call.
func NewPublisher(cfg *config.NotionConfig, logger *errors.Logger) *Publisher {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
		now:    time.Now,
	}
}

type pageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]property `json:"properties"`
	Children   []block             `json:"children"`
}

type pageParent struct {
	PageID string `json:"page_id"`
}

type property struct {
	Title []richTextWrapper `json:"title"`
}

type block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *paragraph `json:"paragraph,omitempty"`
}

type paragraph struct {
	RichText []richTextWrapper `json:"rich_text"`
}

type richTextWrapper struct {
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

type textBody struct {
	Content string `json:"content"`
}

// Publish creates a day-log page for the run result. Returns true when the
// page was created, false when publishing was skipped or failed.
func (p *Publisher) Publish(ctx context.Context, result types.RunResult) bool {
	if p == nil {
		return false
	}

	payload := pageRequest{
		Parent: pageParent{PageID: p.cfg.PageID},
		Properties: map[string]property{
			"title": {Title: []richTextWrapper{richText(FormatTitle(p.now()))}},
		},
		Children: paragraphBlocks(FormatBody(result)),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("Run log payload encoding failed", "error", err.Error())
		return false
	}

	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := p.cfg.Version
	if version == "" {
		version = defaultVersion
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		baseURL+"/v1/pages", bytes.NewReader(body))
	if err != nil {
		p.logger.Warn("Run log request build failed", "error", err.Error())
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", version)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("Run log publish failed", "error", err.Error())
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		p.logger.Warn("Run log publish rejected",
			"status", resp.StatusCode,
			"response", string(detail))
		return false
	}

	p.logger.Info("Run log published", "status", fmt.Sprintf("%d", resp.StatusCode))
	return true
}

func paragraphBlocks(lines []string) []block {
	blocks := make([]block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, block{
			Object:    "block",
			Type:      "paragraph",
			Paragraph: &paragraph{RichText: []richTextWrapper{richText(line)}},
		})
	}
	return blocks
}

func richText(content string) richTextWrapper {
	return richTextWrapper{Type: "text", Text: textBody{Content: content}}
}
