package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"

	"github.com/chromedp/chromedp"
)

// Per-field outcome strings recorded in SubmitOutcome.FieldResults
const (
	resultFilled   = "filled"
	resultUploaded = "uploaded"
	resultSkipped  = "skipped (no data)"
)

// resume-slot field keys that receive a file attach instead of a text fill
var resumeFieldKeys = map[string]bool{
	"resume_upload":      true,
	"_systemfield_resume": true,
}

// submitState tracks the submission lifecycle. Only a failure before
// FieldsProcessing (navigation) or at the final click surfaces as an error;
// individual field failures never abort the flow.
type submitState int

const (
	stateNotStarted submitState = iota
	stateFieldsProcessing
	stateCaptured
	stateSuccess
	stateError
)

// SubmitRequest describes one form submission attempt.
type SubmitRequest struct {
	URL        string
	Fields     FieldChains
	Applicant  types.Applicant
	ResumePath string
}

// Driver drives a headless browser through an application form.
type Driver struct {
	cfg    *config.BrowserConfig
	logger *errors.Logger
}

// NewDriver creates a submission driver from the browser configuration.
func NewDriver(cfg *config.BrowserConfig, logger *errors.Logger) *Driver {
	return &Driver{cfg: cfg, logger: logger}
}

// Submit navigates to the form, processes every field independently, clicks
// submit, and captures a screenshot. Field failures are recorded per field
// and never abort the attempt; the returned error is non-nil only for
// top-level navigation or timeout failures, and even then the partial
// FieldResults and any screenshot are populated on the outcome.
func (d *Driver) Submit(ctx context.Context, req SubmitRequest) (types.SubmitOutcome, error) {
	outcome := types.SubmitOutcome{FieldResults: make(map[string]string)}
	state := stateNotStarted

	allocCtx, cancelAlloc := d.newAllocator(ctx)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, d.cfg.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		state = stateError
		outcome.Message = fmt.Sprintf("navigation failed: %v", err)
		d.logger.Warn("Form navigation failed",
			"url", req.URL,
			"state", int(state),
			"error", err.Error())
		return outcome, errors.NewBrowserError(errors.ErrCodeBrowserTimeout,
			"Failed to load application form", err)
	}

	state = stateFieldsProcessing
	data := applicantData(req.Applicant)

	for field, candidates := range req.Fields {
		outcome.FieldResults[field] = d.processField(browserCtx, field, candidates, data, req.ResumePath)
	}

	// Submit click is best-effort like any field action; the screenshot below
	// documents whatever the page shows afterwards.
	clickErr := d.runWithTimeout(browserCtx, d.cfg.ActionTimeout,
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery))
	if clickErr != nil {
		outcome.Message = fmt.Sprintf("submit click failed: %v", clickErr)
	} else {
		outcome.Submitted = true
	}

	if path, err := d.captureScreenshot(browserCtx); err != nil {
		d.logger.Warn("Screenshot capture failed", "url", req.URL, "error", err.Error())
	} else {
		outcome.ScreenshotPath = path
	}
	state = stateCaptured

	if outcome.Submitted {
		state = stateSuccess
		outcome.Message = "form submitted"
	} else {
		state = stateError
	}

	d.logger.Info("Form submission finished",
		"url", req.URL,
		"submitted", outcome.Submitted,
		"fields", len(outcome.FieldResults),
		"state", int(state))

	return outcome, nil
}

// processField resolves the field's selector chain and performs the matching
// action. Every failure is captured in the returned result string; nothing
// escapes to the caller.
func (d *Driver) processField(ctx context.Context, field string, candidates []string, data map[string]string, resumePath string) string {
	switch {
	case resumeFieldKeys[field]:
		if resumePath == "" {
			return resultSkipped
		}
		selector, err := d.resolveSelector(ctx, candidates)
		if err != nil {
			return fmt.Sprintf("upload error: %v", err)
		}
		if err := d.runWithTimeout(ctx, d.cfg.ActionTimeout,
			chromedp.SetUploadFiles(selector, []string{resumePath}, chromedp.ByQuery)); err != nil {
			return fmt.Sprintf("upload error: %v", err)
		}
		return resultUploaded

	default:
		value, ok := data[field]
		if !ok {
			return resultSkipped
		}
		selector, err := d.resolveSelector(ctx, candidates)
		if err != nil {
			return fmt.Sprintf("fill error: %v", err)
		}
		if err := d.runWithTimeout(ctx, d.cfg.ActionTimeout,
			chromedp.Clear(selector, chromedp.ByQuery),
			chromedp.SendKeys(selector, value, chromedp.ByQuery)); err != nil {
			return fmt.Sprintf("fill error: %v", err)
		}
		return resultFilled
	}
}

// resolveSelector walks the ranked candidate list and returns the first
// selector present on the page.
func (d *Driver) resolveSelector(ctx context.Context, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", errors.NewBrowserError(errors.ErrCodeFormNotFound,
			"No selector candidates for field", nil)
	}

	for _, candidate := range candidates {
		err := d.runWithTimeout(ctx, d.cfg.ActionTimeout,
			chromedp.WaitVisible(candidate, chromedp.ByQuery))
		if err == nil {
			return candidate, nil
		}
		d.logger.Debug("Selector candidate not present, trying next",
			"selector", candidate)
	}

	return "", errors.NewBrowserError(errors.ErrCodeFormNotFound,
		fmt.Sprintf("No selector candidate matched (%d tried)", len(candidates)), nil)
}

// FormHTML extracts the page's form markup for selector inference. When the
// page has no form element the full document is returned, truncated so the
// inference prompt stays bounded.
func (d *Driver) FormHTML(ctx context.Context, url string) (string, error) {
	const maxDocumentHTML = 24000

	allocCtx, cancelAlloc := d.newAllocator(ctx)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, d.cfg.NavigationTimeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", errors.NewBrowserError(errors.ErrCodeBrowserTimeout,
			"Failed to load page for form extraction", err)
	}

	var html string
	if err := d.runWithTimeout(browserCtx, d.cfg.ActionTimeout,
		chromedp.OuterHTML("form", &html, chromedp.ByQuery)); err == nil && html != "" {
		return html, nil
	}

	if err := d.runWithTimeout(browserCtx, d.cfg.ActionTimeout,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.NewBrowserError(errors.ErrCodeFormNotFound,
			"Failed to extract page content", err)
	}
	if len(html) > maxDocumentHTML {
		html = html[:maxDocumentHTML]
	}
	return html, nil
}

func (d *Driver) newAllocator(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.cfg.Headless),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (d *Driver) runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	actionCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(actionCtx, actions...)
}

// captureScreenshot writes a full-page screenshot under the configured
// directory and returns its path.
func (d *Driver) captureScreenshot(ctx context.Context) (string, error) {
	var shot []byte
	if err := d.runWithTimeout(ctx, d.cfg.ActionTimeout,
		chromedp.CaptureScreenshot(&shot)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.cfg.ScreenshotDir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(d.cfg.ScreenshotDir,
		fmt.Sprintf("apply_%s.png", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, shot, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// applicantData maps logical form field names to applicant values. Both the
// "full_name" and bare "name" keys resolve to the applicant's name because
// inferred maps use either.
func applicantData(a types.Applicant) map[string]string {
	return map[string]string{
		"full_name": a.FullName,
		"name":      a.FullName,
		"email":     a.Email,
		"phone":     a.Phone,
	}
}
