package core

import (
	"fmt"
	"strings"
	"time"
)

// CheckType identifies the category of an availability check.
type CheckType string

const (
	CheckTypeDomain CheckType = "domain"
	CheckTypeSocial CheckType = "social"
)

// Verdict is the availability classification for a single target.
type Verdict int

const (
	// VerdictUnknown covers transport failures and responses that cannot be classified.
	VerdictUnknown Verdict = 0
	// VerdictAvailable means the handle is free on the target.
	VerdictAvailable Verdict = 1
	// VerdictTaken means the handle is already in use on the target.
	VerdictTaken Verdict = 2
	// VerdictInvalid means the handle breaks the target's syntax rules.
	// It is decided locally, without a network call.
	VerdictInvalid Verdict = 3
)

var verdictLabels = map[Verdict]string{
	VerdictUnknown:   "unknown",
	VerdictAvailable: "available",
	VerdictTaken:     "taken",
	VerdictInvalid:   "invalid",
}

// String returns the lowercase label for the verdict.
func (v Verdict) String() string {
	if label, ok := verdictLabels[v]; ok {
		return label
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// MarshalText renders the verdict label so JSON and YAML carry readable values.
func (v Verdict) MarshalText() ([]byte, error) {
	if _, ok := verdictLabels[v]; !ok {
		return nil, fmt.Errorf("unknown verdict %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText parses a verdict label.
func (v *Verdict) UnmarshalText(text []byte) error {
	needle := strings.ToLower(strings.TrimSpace(string(text)))
	for verdict, label := range verdictLabels {
		if label == needle {
			*v = verdict
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", string(text))
}

// Provenance captures metadata about how a check was resolved.
type Provenance struct {
	CheckID     string    `json:"check_id" yaml:"check_id"`
	RequestedAt time.Time `json:"requested_at" yaml:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at" yaml:"resolved_at"`
	Source      string    `json:"source" yaml:"source"`
	Server      string    `json:"server,omitempty" yaml:"server,omitempty"`
	ToolVersion string    `json:"tool_version" yaml:"tool_version"`
}

// CheckResult pairs one target with its verdict.
type CheckResult struct {
	// Name is the target identity: the domain for domain checks, the platform
	// name for social checks.
	Name       string         `json:"name" yaml:"name"`
	Handle     string         `json:"handle" yaml:"handle"`
	CheckType  CheckType      `json:"check_type" yaml:"check_type"`
	Platform   PlatformID     `json:"platform,omitempty" yaml:"platform,omitempty"`
	TLD        string         `json:"tld,omitempty" yaml:"tld,omitempty"`
	Available  Verdict        `json:"available" yaml:"available"`
	StatusCode int            `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	URL        string         `json:"url,omitempty" yaml:"url,omitempty"`
	Message    string         `json:"message,omitempty" yaml:"message,omitempty"`
	ExtraData  map[string]any `json:"extra_data,omitempty" yaml:"extra_data,omitempty"`
	Provenance Provenance     `json:"provenance" yaml:"provenance"`
}

// Report is the full outcome of one run for a handle.
// Domains and Social follow the order the targets were requested in.
type Report struct {
	Handle      string         `json:"handle" yaml:"handle"`
	Preset      string         `json:"preset,omitempty" yaml:"preset,omitempty"`
	TLDs        []string       `json:"tlds,omitempty" yaml:"tlds,omitempty"`
	Domains     []*CheckResult `json:"domains,omitempty" yaml:"domains,omitempty"`
	Social      []*CheckResult `json:"social,omitempty" yaml:"social,omitempty"`
	CompletedAt time.Time      `json:"completed_at" yaml:"completed_at"`
}

// Summary counts verdicts across both categories.
type Summary struct {
	Total     int `json:"total" yaml:"total"`
	Available int `json:"available" yaml:"available"`
	Taken     int `json:"taken" yaml:"taken"`
	Invalid   int `json:"invalid" yaml:"invalid"`
	Unknown   int `json:"unknown" yaml:"unknown"`
}

// Summary tallies the report's results.
func (r *Report) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, group := range [][]*CheckResult{r.Domains, r.Social} {
		for _, result := range group {
			if result == nil {
				continue
			}
			s.Total++
			switch result.Available {
			case VerdictAvailable:
				s.Available++
			case VerdictTaken:
				s.Taken++
			case VerdictInvalid:
				s.Invalid++
			default:
				s.Unknown++
			}
		}
	}
	return s
}

// Results returns domain results followed by social results.
func (r *Report) Results() []*CheckResult {
	if r == nil {
		return nil
	}
	results := make([]*CheckResult, 0, len(r.Domains)+len(r.Social))
	results = append(results, r.Domains...)
	results = append(results, r.Social...)
	return results
}
