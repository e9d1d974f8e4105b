package sconn

import "time"

// DialOptions configures Dial (spec §6 "connect(url, target_server?,
// flag?)"). The zero value dials with the protocol defaults, mirroring
// the teacher's ClientOpts/Dialer pattern of a small option struct
// defaulted by its configure step rather than functional options.
type DialOptions struct {
	// Target is the logical server the handshake's newconnect frame
	// names (spec §6 "<target_server>"). Empty is a valid target.
	Target string

	// Flag is an opaque newconnect flag forwarded verbatim (spec §6).
	Flag string

	// PackageType names the schema type used for the package header
	// every data frame carries (spec §6 default "base.package").
	PackageType string

	// DialTimeout bounds the initial TCP connect. Zero means no
	// timeout, deferring to the platform default.
	DialTimeout time.Duration
}

func (o DialOptions) withDefaults() DialOptions {
	if o.PackageType == "" {
		o.PackageType = "base.package"
	}
	return o
}
