package core

import "strings"

// DefaultPreset is used when no preset is named or the name is unrecognized.
const DefaultPreset = "startup"

// TLDPreset is a named, ordered set of TLDs.
type TLDPreset struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	TLDs        []string `json:"tlds" yaml:"tlds"`
}

// BuiltInPresets provides the TLD sets bundled with handlecheck.
var BuiltInPresets = []TLDPreset{
	{
		Name:        "startup",
		Description: "Common startup and developer TLDs",
		TLDs:        []string{"com", "org", "io", "ai", "tech", "app", "dev", "xyz"},
	},
	{
		Name:        "enterprise",
		Description: "Traditional business TLDs",
		TLDs:        []string{"com", "org", "net", "info", "biz", "us"},
	},
	{
		Name:        "country",
		Description: "Major country-code TLDs",
		TLDs:        []string{"us", "uk", "de", "fr", "ca", "au", "jp", "br", "in"},
	},
}

// FindPreset looks up a built-in preset by name.
func FindPreset(name string) (*TLDPreset, bool) {
	needle := strings.TrimSpace(strings.ToLower(name))
	if needle == "" {
		return nil, false
	}

	for _, preset := range BuiltInPresets {
		if strings.EqualFold(preset.Name, needle) {
			copied := preset
			copied.TLDs = append([]string(nil), preset.TLDs...)
			return &copied, true
		}
	}

	return nil, false
}

// PresetTLDs returns the TLDs for a preset, falling back to the startup set.
func PresetTLDs(name string) []string {
	if preset, ok := FindPreset(name); ok {
		return preset.TLDs
	}
	fallback, _ := FindPreset(DefaultPreset)
	return fallback.TLDs
}

// ResolveTLDs picks the TLD list for a run. A custom comma-separated list
// replaces the preset entirely unless it contains no usable entries.
func ResolveTLDs(preset, custom string) []string {
	if tlds := ParseTLDList(custom); len(tlds) > 0 {
		return tlds
	}
	return PresetTLDs(preset)
}

// ParseTLDList splits a comma-separated TLD list, keeping first-seen order.
func ParseTLDList(raw string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		tld := strings.ToLower(strings.TrimSpace(part))
		tld = strings.TrimPrefix(tld, ".")
		if tld == "" {
			continue
		}
		if _, ok := seen[tld]; ok {
			continue
		}
		seen[tld] = struct{}{}
		result = append(result, tld)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// DomainCandidate joins a handle and a TLD into the domain name checked
// for it. The handle is used as given.
func DomainCandidate(handle, tld string) string {
	return handle + "." + strings.TrimPrefix(strings.TrimSpace(tld), ".")
}
