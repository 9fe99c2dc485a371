package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// NSLookup resolves name server records. *net.Resolver satisfies it.
type NSLookup interface {
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

func (r *RDAPResolver) whoisAllowed(tld string) bool {
	if r == nil || !r.WhoisCfg.Enabled {
		return false
	}

	tld = strings.ToLower(strings.TrimSpace(tld))
	if tld == "" {
		return false
	}

	if len(r.WhoisCfg.TLDs) == 0 {
		return !r.WhoisCfg.RequireExplicit
	}

	for _, allowed := range r.WhoisCfg.TLDs {
		normalized := strings.TrimSpace(allowed)
		normalized = strings.TrimPrefix(normalized, ".")
		if strings.EqualFold(normalized, tld) {
			return true
		}
	}

	return !r.WhoisCfg.RequireExplicit
}

func (r *RDAPResolver) checkWhois(ctx context.Context, name, tld string) *Resolution {
	if r.WhoisCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.WhoisCfg.Timeout)
		defer cancel()
	}

	client := r.Whois
	if client == nil {
		client = &DefaultWhoisClient{
			Servers: r.WhoisCfg.Servers,
			Timeout: r.WhoisCfg.Timeout,
		}
	}

	resp, err := client.Lookup(ctx, tld, name)
	if err != nil {
		return indeterminate(whoisSource, "", 0, err.Error(), nil)
	}
	if resp == nil {
		return indeterminate(whoisSource, "", 0, "whois lookup failed", nil)
	}

	patterns := normalizeWhoisPatterns(r.WhoisCfg)
	available, message := interpretWhois(resp.Body, patterns)
	extra := map[string]any{
		"whois_server":   resp.Server,
		"whois_raw_hash": whoisHash(resp.Body),
	}

	return &Resolution{
		Available: available,
		Source:    whoisSource,
		Server:    resp.Server,
		Message:   message,
		ExtraData: extra,
	}
}

// checkDNS treats delegated name servers as proof of registration. Missing
// records prove nothing, since registered domains may be undelegated.
func (r *RDAPResolver) checkDNS(ctx context.Context, name string) *Resolution {
	if r.DNSCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.DNSCfg.Timeout)
		defer cancel()
	}

	var lookup NSLookup = net.DefaultResolver
	if r.DNS != nil {
		lookup = r.DNS
	}

	records, err := lookup.LookupNS(ctx, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			extra := map[string]any{"dns_status": "nxdomain"}
			return indeterminate(dnsSource, "", 0, "dns nxdomain (non-authoritative)", extra)
		}
		return indeterminate(dnsSource, "", 0, fmt.Sprintf("dns lookup failed: %v", err), nil)
	}

	if len(records) == 0 {
		extra := map[string]any{"dns_status": "no_records"}
		return indeterminate(dnsSource, "", 0, "dns no records (non-authoritative)", extra)
	}

	extra := map[string]any{"dns_status": "records_present", "dns_ns_count": len(records)}
	return resolved(false, dnsSource, "", 0, "dns records present (non-authoritative)", extra)
}
