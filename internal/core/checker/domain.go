package checker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openrdap/rdap"

	"github.com/namelens/handlecheck/internal/core"
)

const rdapSource = "rdap"

// DefaultRDAPOverrides routes TLDs whose bootstrap entries are unreliable to
// known-good RDAP servers.
var DefaultRDAPOverrides = map[string][]string{
	"app": {"https://pubapi.registry.google/rdap", "https://www.rdap.net/rdap"},
	"dev": {"https://pubapi.registry.google/rdap", "https://www.rdap.net/rdap"},
}

// Resolution is what a DomainResolver learned about one domain.
// Available is nil when the answer is indeterminate.
type Resolution struct {
	Available  *bool
	Source     string
	Server     string
	StatusCode int
	Message    string
	ExtraData  map[string]any
}

// Verdict maps the resolution onto the shared verdict set.
func (r *Resolution) Verdict() core.Verdict {
	if r == nil || r.Available == nil {
		return core.VerdictUnknown
	}
	if *r.Available {
		return core.VerdictAvailable
	}
	return core.VerdictTaken
}

// DomainResolver answers whether a fully-qualified domain is registered.
// A nil resolution means the resolver could not tell.
type DomainResolver interface {
	Resolve(ctx context.Context, fqdn string) (*Resolution, error)
}

// DomainChecker turns resolver answers into check results.
type DomainChecker struct {
	Resolver    DomainResolver
	ToolVersion string
	Clock       func() time.Time
}

// Type returns the checker type.
func (d *DomainChecker) Type() core.CheckType {
	return core.CheckTypeDomain
}

// SupportsName returns true if the name looks like a domain.
func (d *DomainChecker) SupportsName(name string) bool {
	value := strings.TrimSpace(name)
	return value != "" && strings.Contains(value, ".")
}

// Check resolves one domain. Resolver failures become an unknown verdict;
// only a malformed domain or a missing resolver is returned as an error.
func (d *DomainChecker) Check(ctx context.Context, name string) (*core.CheckResult, error) {
	if d == nil || d.Resolver == nil {
		return nil, errors.New("domain checker is not configured")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	requestedAt := d.now()

	// Name and Handle keep the requested casing; registries are queried
	// in lowercase.
	baseName, tld, err := splitDomain(name)
	if err != nil {
		return nil, err
	}
	fqdn := strings.TrimSuffix(strings.TrimSpace(name), ".")

	resolution, err := d.Resolver.Resolve(ctx, strings.ToLower(fqdn))
	if err != nil {
		resolution = &Resolution{Message: err.Error()}
	}
	if resolution == nil {
		resolution = &Resolution{Message: "indeterminate"}
	}

	extra := resolution.ExtraData
	if extra == nil {
		extra = map[string]any{}
	}
	if resolution.Source != "" {
		extra["resolution_source"] = resolution.Source
	}
	if strings.TrimSpace(resolution.Server) != "" {
		extra["resolution_server"] = resolution.Server
	}

	return &core.CheckResult{
		Name:       fqdn,
		Handle:     baseName,
		CheckType:  core.CheckTypeDomain,
		TLD:        tld,
		Available:  resolution.Verdict(),
		StatusCode: resolution.StatusCode,
		Message:    resolution.Message,
		ExtraData:  extra,
		Provenance: core.Provenance{
			CheckID:     uuid.New().String(),
			RequestedAt: requestedAt,
			ResolvedAt:  d.now(),
			Source:      resolution.Source,
			Server:      resolution.Server,
			ToolVersion: d.ToolVersion,
		},
	}, nil
}

func (d *DomainChecker) now() time.Time {
	if d != nil && d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

// RDAPResolver resolves domains over RDAP, falling back to WHOIS and then
// DNS for TLDs without an RDAP server.
type RDAPResolver struct {
	Bootstrap ServerLookup
	Client    *rdap.Client
	Timeout   time.Duration
	Whois     WhoisClient
	WhoisCfg  WhoisFallbackConfig
	DNS       NSLookup
	DNSCfg    DNSFallbackConfig

	// RDAPOverrides allows routing specific TLDs to known-good RDAP servers.
	// Keys are normalized TLDs without a leading dot. Nil uses the defaults.
	RDAPOverrides map[string][]string
}

// Resolve queries each RDAP server for the TLD in turn until one answers.
func (r *RDAPResolver) Resolve(ctx context.Context, fqdn string) (*Resolution, error) {
	if r == nil {
		return nil, errors.New("rdap resolver is not configured")
	}

	_, tld, err := splitDomain(fqdn)
	if err != nil {
		return nil, err
	}

	servers := r.rdapOverrideServers(tld)
	var lookupErr error
	if len(servers) == 0 && r.Bootstrap != nil {
		servers, lookupErr = r.Bootstrap.LookupServers(ctx, tld)
	}

	if len(servers) == 0 {
		if r.whoisAllowed(tld) {
			return r.checkWhois(ctx, fqdn, tld), nil
		}
		if r.DNSCfg.Enabled {
			return r.checkDNS(ctx, fqdn), nil
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("rdap bootstrap: %w", lookupErr)
		}
		return indeterminate(rdapSource, "", 0, "no rdap server for tld", nil), nil
	}

	client := r.Client
	if client == nil {
		client = &rdap.Client{}
	}

	var last *Resolution
	for _, serverBase := range servers {
		serverURL, err := url.Parse(serverBase)
		if err != nil {
			return nil, fmt.Errorf("invalid rdap server url: %w", err)
		}
		rdapRequestURL := rdapDomainURL(serverURL, fqdn)

		req := rdap.NewDomainRequest(fqdn).WithServer(serverURL)
		if r.Timeout > 0 {
			req.Timeout = r.Timeout
		}
		req = req.WithContext(ctx)

		resp, reqErr := client.Do(req)
		statusCode, server := responseStatus(resp, rdapRequestURL)

		if reqErr != nil {
			switch {
			case isNotFound(reqErr) || statusCode == 404:
				return resolved(true, rdapSource, server, statusCode, "rdap not found", nil), nil
			case statusCode == 429:
				last = indeterminate(rdapSource, server, statusCode, "rdap rate limited", retryAfter(resp))
			case statusCode >= 500 && statusCode <= 599:
				last = indeterminate(rdapSource, server, statusCode, "rdap server error", nil)
			default:
				last = indeterminate(rdapSource, server, statusCode, reqErr.Error(), nil)
			}
			continue
		}

		if domain, ok := resp.Object.(*rdap.Domain); ok {
			return resolved(false, rdapSource, server, statusCode, "domain found", domainExtra(domain)), nil
		}

		last = indeterminate(rdapSource, server, statusCode, "unexpected rdap response", nil)
	}

	if last == nil {
		last = indeterminate(rdapSource, "", 0, fmt.Sprintf("no rdap servers responded successfully (tried %d server(s))", len(servers)), nil)
	}
	return last, nil
}

func (r *RDAPResolver) rdapOverrideServers(tld string) []string {
	normalized := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(tld, ".")))
	if normalized == "" {
		return nil
	}

	overrides := DefaultRDAPOverrides
	if r != nil && r.RDAPOverrides != nil {
		overrides = r.RDAPOverrides
	}

	return overrides[normalized]
}

func resolved(available bool, source, server string, statusCode int, message string, extra map[string]any) *Resolution {
	return &Resolution{
		Available:  &available,
		Source:     source,
		Server:     server,
		StatusCode: statusCode,
		Message:    message,
		ExtraData:  extra,
	}
}

func indeterminate(source, server string, statusCode int, message string, extra map[string]any) *Resolution {
	return &Resolution{
		Source:     source,
		Server:     server,
		StatusCode: statusCode,
		Message:    message,
		ExtraData:  extra,
	}
}

func rdapDomainURL(server *url.URL, domain string) string {
	if server == nil {
		return ""
	}

	temp := *server
	temp.RawQuery = ""
	temp.Fragment = ""
	base := temp.String()
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "domain/" + strings.TrimSpace(domain)
}

// splitDomain returns the base with its requested casing and the TLD in
// lowercase.
func splitDomain(domain string) (string, string, error) {
	value := strings.TrimSuffix(strings.TrimSpace(domain), ".")
	if value == "" {
		return "", "", errors.New("domain is required")
	}

	parts := strings.Split(value, ".")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[0] == "" {
		return "", "", errors.New("domain must include a tld")
	}

	base := strings.Join(parts[:len(parts)-1], ".")
	tld := strings.ToLower(parts[len(parts)-1])

	return base, tld, nil
}

func responseStatus(resp *rdap.Response, fallbackURL string) (int, string) {
	if resp == nil || len(resp.HTTP) == 0 || resp.HTTP[0] == nil || resp.HTTP[0].Response == nil {
		return 0, strings.TrimSpace(fallbackURL)
	}

	hrr := resp.HTTP[0].Response
	url := ""
	if resp.HTTP[0].URL != "" {
		url = resp.HTTP[0].URL
	}
	if strings.TrimSpace(url) == "" {
		url = strings.TrimSpace(fallbackURL)
	}

	return hrr.StatusCode, url
}

func retryAfter(resp *rdap.Response) map[string]any {
	if resp == nil || len(resp.HTTP) == 0 || resp.HTTP[0] == nil || resp.HTTP[0].Response == nil {
		return nil
	}

	retry := resp.HTTP[0].Response.Header.Get("Retry-After")
	if retry == "" {
		return nil
	}
	return map[string]any{"retry_after": retry}
}

func domainExtra(domain *rdap.Domain) map[string]any {
	if domain == nil {
		return nil
	}

	extra := map[string]any{}
	if len(domain.Status) > 0 {
		extra["status"] = domain.Status
	}

	registrar := findRegistrar(domain)
	if registrar != "" {
		extra["registrar"] = registrar
	}

	if expiry := findEventDate(domain.Events, "expiration"); expiry != "" {
		extra["expiration"] = expiry
	}

	return extra
}

func findRegistrar(domain *rdap.Domain) string {
	if domain == nil {
		return ""
	}

	for _, entity := range domain.Entities {
		for _, role := range entity.Roles {
			if role == "registrar" && entity.VCard != nil {
				return entity.VCard.Name()
			}
		}
	}

	return ""
}

func findEventDate(events []rdap.Event, action string) string {
	for _, event := range events {
		if event.Action == action {
			return event.Date
		}
	}
	return ""
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var clientErr *rdap.ClientError
	if !errors.As(err, &clientErr) {
		return false
	}

	return clientErr.Type == rdap.ObjectDoesNotExist
}
