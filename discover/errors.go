package discover

import "errors"

var (
	// ErrDNSLookupFailed indicates a DNS SRV/TXT lookup failed.
	ErrDNSLookupFailed = errors.New("discover: DNS lookup failed")

	// ErrNoChannel indicates no channel TXT records were found for the
	// domain.
	ErrNoChannel = errors.New("discover: no channel published")

	// ErrNoEndpoints indicates no SRV records were found for the domain.
	ErrNoEndpoints = errors.New("discover: no endpoints found")

	// ErrInvalidAddress indicates a published watch address is malformed.
	ErrInvalidAddress = errors.New("discover: invalid watch address")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not
	// authenticate the response.
	ErrDNSSECValidationFailed = errors.New("discover: DNSSEC validation failed")
)
