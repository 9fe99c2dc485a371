package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/namelens/handlecheck/internal/core"
	"github.com/namelens/handlecheck/internal/metrics"
)

const orchestratorSource = "orchestrator"

// Checker describes a name availability checker.
type Checker interface {
	Check(ctx context.Context, name string) (*core.CheckResult, error)
	Type() core.CheckType
	SupportsName(name string) bool
}

// Validator is implemented by checkers that can explain why a name is
// rejected. Validation never touches the network.
type Validator interface {
	Validate(name string) error
}

// Debuggable is implemented by checkers with a diagnostic mode.
type Debuggable interface {
	WithDebug(enabled bool) Checker
}

// SocialTarget binds a platform to the checker that probes it.
type SocialTarget struct {
	Platform core.Platform
	Checker  Checker
}

// Request describes one run for a handle.
type Request struct {
	Handle       string
	CheckDomains bool
	CheckSocial  bool
	Preset       string
	Debug        bool

	// CustomTLDs is a comma-separated list that replaces the preset.
	CustomTLDs string
}

// Orchestrator fans a handle out to every domain and platform target.
type Orchestrator struct {
	Domain Checker
	Social []SocialTarget

	// OnResult, when set, is called once per target as soon as its result
	// is ready. It runs on the target's goroutine and must be safe for
	// concurrent use.
	OnResult func(*core.CheckResult)

	Clock func() time.Time
}

type target struct {
	name      string
	checkType core.CheckType
	platform  core.PlatformID
	tld       string
	checker   Checker
}

// Check runs every enabled target concurrently and waits for all of them.
// Per-target failures come back as unknown results; the only error is a
// blank handle.
func (o *Orchestrator) Check(ctx context.Context, req Request) (*core.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// The handle is passed through untouched; each validator decides
	// what it accepts.
	handle := req.Handle
	if strings.TrimSpace(handle) == "" {
		return nil, fmt.Errorf("handle is required")
	}

	report := &core.Report{Handle: handle}

	var domainTargets, socialTargets []target
	if req.CheckDomains {
		report.TLDs = core.ResolveTLDs(req.Preset, req.CustomTLDs)
		if len(core.ParseTLDList(req.CustomTLDs)) == 0 {
			report.Preset = presetName(req.Preset)
		}
		domainTargets = o.domainTargets(handle, report.TLDs)
	}
	if req.CheckSocial {
		socialTargets = o.socialTargets(req.Debug)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Domains = o.run(ctx, handle, domainTargets)
	}()
	go func() {
		defer wg.Done()
		report.Social = o.run(ctx, handle, socialTargets)
	}()
	wg.Wait()

	report.CompletedAt = o.now()
	return report, nil
}

func (o *Orchestrator) domainTargets(handle string, tlds []string) []target {
	targets := make([]target, 0, len(tlds))
	for _, tld := range tlds {
		targets = append(targets, target{
			name:      core.DomainCandidate(handle, tld),
			checkType: core.CheckTypeDomain,
			tld:       tld,
			checker:   o.Domain,
		})
	}
	return targets
}

func (o *Orchestrator) socialTargets(debug bool) []target {
	targets := make([]target, 0, len(o.Social))
	for _, social := range o.Social {
		c := social.Checker
		if d, ok := c.(Debuggable); ok && c != nil {
			c = d.WithDebug(debug)
		}
		targets = append(targets, target{
			name:      social.Platform.Name,
			checkType: core.CheckTypeSocial,
			platform:  social.Platform.ID,
			checker:   c,
		})
	}
	return targets
}

// run executes one category. Each goroutine owns exactly one slot of the
// result slice, so order follows targets regardless of completion order.
func (o *Orchestrator) run(ctx context.Context, handle string, targets []target) []*core.CheckResult {
	if len(targets) == 0 {
		return nil
	}

	results := make([]*core.CheckResult, len(targets))
	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.runTarget(ctx, handle, targets[i])
			if o.OnResult != nil {
				o.OnResult(results[i])
			}
		}(i)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) runTarget(ctx context.Context, handle string, t target) (result *core.CheckResult) {
	startedAt := o.now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPanic()
			result = o.fallbackResult(handle, t, core.VerdictUnknown, fmt.Sprintf("check panicked: %v", r), startedAt)
		}
		metrics.RecordCheck(t.checkType, t.metricTarget(), result.Available, o.now().Sub(startedAt))
	}()

	if t.checker == nil {
		return o.fallbackResult(handle, t, core.VerdictUnknown, "checker not configured", startedAt)
	}

	input := handle
	if t.checkType == core.CheckTypeDomain {
		input = t.name
	}

	if v, ok := t.checker.(Validator); ok {
		if err := v.Validate(input); err != nil {
			return o.fallbackResult(handle, t, core.VerdictInvalid, err.Error(), startedAt)
		}
	} else if !t.checker.SupportsName(input) {
		return o.fallbackResult(handle, t, core.VerdictInvalid, "checker does not support name", startedAt)
	}

	checked, err := t.checker.Check(ctx, input)
	if err != nil {
		return o.fallbackResult(handle, t, core.VerdictUnknown, err.Error(), startedAt)
	}
	if checked == nil {
		return o.fallbackResult(handle, t, core.VerdictUnknown, "checker returned no result", startedAt)
	}
	return checked
}

func (o *Orchestrator) fallbackResult(handle string, t target, verdict core.Verdict, message string, requestedAt time.Time) *core.CheckResult {
	return &core.CheckResult{
		Name:      t.name,
		Handle:    handle,
		CheckType: t.checkType,
		Platform:  t.platform,
		TLD:       t.tld,
		Available: verdict,
		Message:   message,
		Provenance: core.Provenance{
			RequestedAt: requestedAt,
			ResolvedAt:  o.now(),
			Source:      orchestratorSource,
		},
	}
}

func (t target) metricTarget() string {
	if t.checkType == core.CheckTypeSocial {
		return string(t.platform)
	}
	return t.tld
}

func presetName(name string) string {
	if preset, ok := core.FindPreset(name); ok {
		return preset.Name
	}
	return core.DefaultPreset
}

func (o *Orchestrator) now() time.Time {
	if o != nil && o.Clock != nil {
		return o.Clock()
	}
	return time.Now().UTC()
}
