package output

import (
	"fmt"
	"strings"

	"github.com/namelens/handlecheck/internal/core"
)

func displayName(result *core.CheckResult) string {
	if result == nil {
		return ""
	}

	name := strings.TrimSpace(result.Name)
	switch result.CheckType {
	case core.CheckTypeDomain:
		if name != "" {
			return name
		}
		if result.TLD != "" {
			return "." + result.TLD
		}
		return ""
	case core.CheckTypeSocial:
		if name == "" {
			name = string(result.Platform)
		}
		if result.Handle == "" {
			return name
		}
		return fmt.Sprintf("%s @%s", name, result.Handle)
	default:
		if name != "" {
			return name
		}
		return string(result.CheckType)
	}
}

func statusLabel(result *core.CheckResult) string {
	if result == nil {
		return core.VerdictUnknown.String()
	}
	return result.Available.String()
}

// formatNotes explains the verdict. Unknown and invalid results always carry
// their reason; decided results only carry registry details.
func formatNotes(result *core.CheckResult) string {
	if result == nil {
		return ""
	}

	parts := []string{}
	switch result.Available {
	case core.VerdictUnknown, core.VerdictInvalid:
		if result.Message != "" {
			parts = append(parts, result.Message)
		}
	}
	if result.ExtraData != nil {
		if retry, ok := result.ExtraData["retry_after"]; ok {
			parts = append(parts, fmt.Sprintf("retry: %v", retry))
		}
	}

	if result.CheckType == core.CheckTypeDomain {
		parts = append(parts, domainNotes(result)...)
	}

	return strings.Join(parts, "; ")
}

func domainNotes(result *core.CheckResult) []string {
	if result == nil || result.ExtraData == nil {
		return nil
	}
	notes := []string{}
	if source, ok := result.ExtraData["resolution_source"]; ok {
		if value, ok := source.(string); ok && value != "" && value != "rdap" {
			notes = append(notes, fmt.Sprintf("source: %s", value))
		}
	}
	if expiration, ok := result.ExtraData["expiration"]; ok {
		notes = append(notes, fmt.Sprintf("exp: %v", expiration))
	}
	if registrar, ok := result.ExtraData["registrar"]; ok {
		notes = append(notes, fmt.Sprintf("registrar: %v", registrar))
	}
	return notes
}
