// Package discover resolves signaling channels over DNS. A counterpart
// publishes its watch addresses in TXT records under _enigmatic.{domain}
// and its observer endpoints as _enigmatic._tcp SRV records, replacing
// manual address exchange. DNSSEC-validating resolution is available for
// channels whose zones are signed.
package discover

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// DNSResolver defines the interface for DNS lookups.
// This allows tests to mock DNS resolution.
type DNSResolver interface {
	// LookupSRV looks up SRV records for the given service, proto, and name.
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)

	// LookupTXT looks up TXT records for the given name.
	LookupTXT(name string) ([]string, error)
}

// defaultDNSResolver wraps the standard net package DNS functions.
type defaultDNSResolver struct{}

func (d *defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

func (d *defaultDNSResolver) LookupTXT(name string) ([]string, error) {
	return net.LookupTXT(name)
}

// DefaultDNSResolver is the production DNS resolver using the net package.
var DefaultDNSResolver DNSResolver = &defaultDNSResolver{}

// SRVService is the SRV service label: _enigmatic._tcp.{domain}.
const SRVService = "enigmatic"

// TXT record keys under _enigmatic.{domain}.
const (
	txtLabel      = "_enigmatic."
	keyAddresses  = "enigmatic="
	keyDialectURL = "dialect="
)

// Channel is what a domain publishes about its signaling channel.
type Channel struct {
	// Addresses are the watch addresses, in publication order.
	Addresses []string

	// DialectURL optionally points at the channel's dialect document.
	DialectURL string
}

// ResolveChannel resolves a domain's channel using the default resolver.
func ResolveChannel(domain string) (*Channel, error) {
	return ResolveChannelWithResolver(domain, DefaultDNSResolver)
}

// ResolveChannelWithResolver resolves the _enigmatic.{domain} TXT records.
// Addresses come from "enigmatic=" records, comma separated; multiple
// records aggregate. A "dialect=" record, when present, carries the dialect
// document URL.
func ResolveChannelWithResolver(domain string, resolver DNSResolver) (*Channel, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	name := txtLabel + domain
	txts, err := resolver.LookupTXT(name)
	if err != nil {
		return nil, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, name, err)
	}

	ch := &Channel{}
	for _, txt := range txts {
		txt = strings.TrimSpace(txt)
		switch {
		case strings.HasPrefix(txt, keyAddresses):
			for _, addr := range strings.Split(strings.TrimPrefix(txt, keyAddresses), ",") {
				addr = strings.TrimSpace(addr)
				if addr == "" {
					continue
				}
				if strings.ContainsAny(addr, " \t") {
					return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
				}
				ch.Addresses = append(ch.Addresses, addr)
			}
		case strings.HasPrefix(txt, keyDialectURL):
			ch.DialectURL = strings.TrimSpace(strings.TrimPrefix(txt, keyDialectURL))
		}
	}

	if len(ch.Addresses) == 0 {
		return nil, fmt.Errorf("%w: no enigmatic= TXT record for %s", ErrNoChannel, name)
	}
	return ch, nil
}

// ResolveEndpoints resolves a domain's observer endpoints using the default
// resolver.
func ResolveEndpoints(domain string) ([]string, error) {
	return ResolveEndpointsWithResolver(domain, DefaultDNSResolver)
}

// ResolveEndpointsWithResolver resolves _enigmatic._tcp.{domain} SRV
// records. Returns endpoint addresses (host:port) sorted by priority then
// weight.
func ResolveEndpointsWithResolver(domain string, resolver DNSResolver) ([]string, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}

	_, addrs, err := resolver.LookupSRV(SRVService, "tcp", domain)
	if err != nil {
		return nil, fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, SRVService, domain, err)
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, SRVService, domain)
	}

	// Sort by priority (ascending), then by weight (descending)
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	endpoints := make([]string, len(addrs))
	for i, srv := range addrs {
		host := strings.TrimSuffix(srv.Target, ".")
		endpoints[i] = fmt.Sprintf("%s:%d", host, srv.Port)
	}

	return endpoints, nil
}
