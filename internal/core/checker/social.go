package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/namelens/handlecheck/internal/core"
	"github.com/namelens/handlecheck/internal/core/engine"
)

const socialSource = "http"

// SocialChecker probes one platform's profile page for a handle.
type SocialChecker struct {
	Platform    core.Platform
	Probe       *ProbeClient
	ToolVersion string
	Clock       func() time.Time

	// Debug attaches page diagnostics to results and, when CaptureDir is
	// set, writes each response body to disk.
	Debug      bool
	CaptureDir string
}

// Type returns the checker type.
func (s *SocialChecker) Type() core.CheckType {
	return core.CheckTypeSocial
}

// SupportsName reports whether the handle passes the platform's syntax rules.
func (s *SocialChecker) SupportsName(name string) bool {
	return ValidateHandle(s.Platform.ID, name) == nil
}

// Validate returns the syntax rule the handle breaks, if any.
func (s *SocialChecker) Validate(name string) error {
	return ValidateHandle(s.Platform.ID, name)
}

// WithDebug returns a copy of the checker with diagnostics toggled.
func (s *SocialChecker) WithDebug(enabled bool) engine.Checker {
	copied := *s
	copied.Debug = copied.Debug || enabled
	return &copied
}

// Check fetches the profile URL and classifies the response. Transport
// failures come back as an unknown verdict, never as an error.
func (s *SocialChecker) Check(ctx context.Context, handle string) (*core.CheckResult, error) {
	if s == nil || s.Probe == nil {
		return nil, fmt.Errorf("social checker is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestedAt := s.now()
	profileURL := s.Platform.ProfileURL(handle)

	outcome := s.Probe.Fetch(ctx, profileURL)
	verdict, reason := Classify(outcome, s.Platform.ID, handle)

	result := &core.CheckResult{
		Name:       s.Platform.Name,
		Handle:     handle,
		CheckType:  core.CheckTypeSocial,
		Platform:   s.Platform.ID,
		Available:  verdict,
		StatusCode: outcome.StatusCode,
		URL:        profileURL,
		Message:    reason,
		Provenance: core.Provenance{
			CheckID:     uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  s.now(),
			Source:      socialSource,
			Server:      outcome.URL,
			ToolVersion: s.ToolVersion,
		},
	}

	if s.Debug && !outcome.Failed() {
		result.ExtraData = s.diagnostics(outcome, handle)
	}

	return result, nil
}

func (s *SocialChecker) diagnostics(outcome *ProbeOutcome, handle string) map[string]any {
	extra := map[string]any{
		"body_bytes": len(outcome.Body),
		"elapsed_ms": outcome.Elapsed.Milliseconds(),
		"final_url":  outcome.URL,
		"title":      pageTitle(outcome.Body),
	}

	if s.Platform.ID == core.PlatformInstagram {
		signals := instagramTitleSignals(strings.ToLower(outcome.Body), handle)
		extra["title_mentions_handle"] = signals.mentionsHandle
		extra["generic_title"] = signals.genericTitle
		extra["profilepage_marker"] = signals.profileMarker
	}

	if s.CaptureDir != "" && outcome.Body != "" {
		path, err := writeDebugCapture(s.CaptureDir, s.Platform.ID, handle, outcome.Body)
		if err != nil {
			extra["capture_error"] = err.Error()
		} else {
			extra["capture_path"] = path
		}
	}

	return extra
}

func (s *SocialChecker) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

// pageTitle returns the trimmed <title> text, or "" when the body does not
// parse or has no title.
func pageTitle(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// DebugCapturePath is where a platform's response body for handle is dumped.
func DebugCapturePath(dir string, platform core.PlatformID, handle string) string {
	name := fmt.Sprintf("%s_debug_%s.html", platform, sanitizeFileComponent(handle))
	return filepath.Join(dir, name)
}

func writeDebugCapture(dir string, platform core.PlatformID, handle, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}
	path := DebugCapturePath(dir, platform, handle)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	return path, nil
}

func sanitizeFileComponent(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, value)
}
