package browser

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"jobpilot/internal/config"
	"jobpilot/internal/errors"
	"jobpilot/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

func testApplicant() types.Applicant {
	return types.Applicant{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "555-0100",
	}
}

func testDriver() *Driver {
	return NewDriver(&config.BrowserConfig{
		Headless:          true,
		NavigationTimeout: 5 * time.Second,
		ActionTimeout:     time.Second,
		ScreenshotDir:     "screenshots",
	}, testLogger)
}

func TestProcessFieldSkipsWithoutData(t *testing.T) {
	d := testDriver()
	data := applicantData(testApplicant())

	// A field the applicant data does not cover is skipped before any
	// browser interaction happens.
	got := d.processField(context.Background(), "cover_letter",
		[]string{`textarea[name="cover_letter"]`}, data, "")
	if got != resultSkipped {
		t.Errorf("expected %q, got %q", resultSkipped, got)
	}
}

func TestProcessFieldSkipsResumeWithoutPath(t *testing.T) {
	d := testDriver()
	data := applicantData(testApplicant())

	for _, field := range []string{"resume_upload", "_systemfield_resume"} {
		got := d.processField(context.Background(), field,
			[]string{`input[type="file"]`}, data, "")
		if got != resultSkipped {
			t.Errorf("field %q: expected %q, got %q", field, resultSkipped, got)
		}
	}
}

func TestResolveSelectorRejectsEmptyChain(t *testing.T) {
	d := testDriver()

	_, err := d.resolveSelector(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for empty candidate chain")
	}
	if !strings.Contains(err.Error(), "No selector candidates") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestResumeFieldKeys(t *testing.T) {
	if !resumeFieldKeys["resume_upload"] || !resumeFieldKeys["_systemfield_resume"] {
		t.Error("both resume slot keys must route to the upload path")
	}
	if resumeFieldKeys["email"] {
		t.Error("email must not route to the upload path")
	}
}
