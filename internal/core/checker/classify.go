package checker

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/namelens/handlecheck/internal/core"
)

// Markers are matched against the lowercased response body.
var (
	instagramGenericTitles = []string{
		"<title>instagram</title>",
		"<title>login • instagram</title>",
	}
	instagramProfileMarker = "profilepage"

	tiktokUniqueIDMarker = `"uniqueid":"`
	tiktokSuccessMarker  = `"statuscode":0`
	tiktokErrorMarkers   = []string{
		`"statuscode":10221`,
		`"statuscode":10222`,
		`"statusmsg":"user banned"`,
		`"statusmsg":"user not found"`,
	}
)

// Classify turns a probe outcome into a verdict for the platform and handle.
// The returned reason names the rule that decided the verdict.
func Classify(outcome *ProbeOutcome, platform core.PlatformID, handle string) (core.Verdict, string) {
	if outcome.Failed() {
		if outcome != nil && outcome.Err != nil {
			return core.VerdictUnknown, outcome.Err.Error()
		}
		return core.VerdictUnknown, "no response"
	}

	status := outcome.StatusCode

	// YouTube channel pages reliably 404 when absent, so the status is enough.
	if platform == core.PlatformYouTube {
		switch {
		case status == http.StatusNotFound:
			return core.VerdictAvailable, "channel not found"
		case isSuccess(status):
			return core.VerdictTaken, "channel found"
		default:
			return core.VerdictUnknown, unexpectedStatus(status)
		}
	}

	if status == http.StatusNotFound {
		return core.VerdictAvailable, "profile not found"
	}
	if !isSuccess(status) {
		return core.VerdictUnknown, unexpectedStatus(status)
	}

	body := strings.ToLower(outcome.Body)
	switch platform {
	case core.PlatformInstagram:
		return classifyInstagram(body, handle)
	case core.PlatformTikTok:
		return classifyTikTok(body)
	default:
		return core.VerdictTaken, "page exists"
	}
}

func classifyInstagram(body, handle string) (core.Verdict, string) {
	signals := instagramTitleSignals(body, handle)
	switch {
	case signals.mentionsHandle:
		return core.VerdictTaken, "instagram title names the handle"
	case signals.genericTitle:
		return core.VerdictAvailable, "instagram generic title"
	case signals.profileMarker:
		// Low confidence: the marker shows up on missing profiles too.
		return core.VerdictTaken, "instagram title fallback: profilepage marker"
	default:
		return core.VerdictAvailable, "instagram title fallback: no profile marker"
	}
}

type instagramSignals struct {
	mentionsHandle bool
	genericTitle   bool
	profileMarker  bool
}

// instagramTitleSignals evaluates the title heuristics on a lowercased body.
// Real profiles are titled "<name> (@handle) • Instagram photos and videos",
// with '@' sometimes written as the entity &#064;.
func instagramTitleSignals(body, handle string) instagramSignals {
	h := strings.ToLower(handle)
	signals := instagramSignals{
		profileMarker: strings.Contains(body, instagramProfileMarker),
	}

	if h != "" {
		for _, pattern := range []string{
			"<title> (@" + h,
			"<title> (&#064;" + h,
			"(@" + h + ")",
			"(&#064;" + h + ")",
		} {
			if strings.Contains(body, pattern) {
				signals.mentionsHandle = true
				break
			}
		}
	}

	for _, title := range instagramGenericTitles {
		if strings.Contains(body, title) {
			signals.genericTitle = true
			break
		}
	}

	return signals
}

// classifyTikTok reads the embedded profile JSON. Both real and missing
// profiles answer 200.
func classifyTikTok(body string) (core.Verdict, string) {
	hasUniqueID := strings.Contains(body, tiktokUniqueIDMarker)
	hasSuccess := strings.Contains(body, tiktokSuccessMarker)

	if hasUniqueID && hasSuccess {
		return core.VerdictTaken, "tiktok profile data with success status"
	}
	for _, marker := range tiktokErrorMarkers {
		if strings.Contains(body, marker) {
			return core.VerdictAvailable, "tiktok error status"
		}
	}
	if hasUniqueID {
		return core.VerdictTaken, "tiktok fallback: profile id without status"
	}
	return core.VerdictAvailable, "tiktok fallback: no profile data"
}

func unexpectedStatus(status int) string {
	return fmt.Sprintf("unexpected status %d", status)
}
