package bfdcfg

import (
	"net/netip"
	"time"
)

// -------------------------------------------------------------------------
// Limits and Defaults
// -------------------------------------------------------------------------

// InstanceNameMax is the exclusive upper bound on instance name length.
// Names of this length or longer are rejected.
const InstanceNameMax = 32

// Admissible ranges for the interval keywords, in milliseconds.
// The upper bound keeps the microsecond representation within uint32,
// matching the BFD Control packet interval fields (RFC 5880 Section 4.1).
const (
	MinRxMin = 1
	MinRxMax = 4294967

	MinTxMin = 1
	MinTxMax = 4294967

	IdleTxMin = 1
	IdleTxMax = 4294967
)

// IntervalMaxSensible is the soft ceiling, in milliseconds, above which
// an interval draws a warning but is still applied.
const IntervalMaxSensible = 1000

// Detection multiplier range (RFC 5880 Section 4.1: Detect Mult is one octet).
const (
	MultiplierMin = 1
	MultiplierMax = 255
)

// TTLMax is the maximum ttl / hoplimit value.
const TTLMax = 255

// Resolved ttl defaults when the keyword is absent, by neighbor family.
// IPv4 single-hop BFD uses TTL 255 (RFC 5881 Section 5, GTSM); IPv6
// uses the common hop-limit default.
const (
	DefaultTTL      = 255
	DefaultHopLimit = 64
)

// Tracked-instance weight range for the redundancy role. Mirrors the
// VRRP priority delta range: a tracked object may add or subtract at
// most 253 from the base priority.
const (
	WeightMin = -253
	WeightMax = 253
)

// Instance field defaults, applied when the block omits the keyword.
const (
	DefaultMinRx      = 10 * time.Millisecond
	DefaultMinTx      = 10 * time.Millisecond
	DefaultIdleTx     = time.Second
	DefaultDetectMult = 3
	DefaultMaxHops    = 0
)

// -------------------------------------------------------------------------
// Instance
// -------------------------------------------------------------------------

// Instance is one declared bfd_instance block, owned by the monitor
// role. Fields are populated by the keyword handlers and finalized at
// block close; an Instance reachable from Loader.Instances has passed
// end-of-block validation.
type Instance struct {
	// Name uniquely identifies the instance across the whole
	// configuration. Comparison is case-sensitive.
	Name string

	// Neighbor is the remote system's address. Mandatory; an instance
	// without it is discarded at block close. Unique across instances.
	Neighbor netip.Addr

	// Source is the local address to send from. Optional; when set,
	// its family must match Neighbor's.
	Source netip.Addr

	// MinRx is the required minimum receive interval.
	MinRx time.Duration

	// MinTx is the desired minimum transmit interval.
	MinTx time.Duration

	// IdleTx is the transmit interval used while the session is down.
	IdleTx time.Duration

	// DetectMult is the detection time multiplier.
	DetectMult uint8

	// Passive reports whether the session waits for the neighbor to
	// transmit first (RFC 5880 Section 6.1).
	Passive bool

	// TTL is the ttl / hoplimit for outgoing control packets. Zero
	// while the block is open means "not configured"; it is resolved
	// from the neighbor's family at block close.
	TTL uint8

	// MaxHops is the lowest acceptable incoming ttl expressed as the
	// maximum number of hops the packet may have traversed. -1 means
	// unlimited. Never exceeds TTL once the instance is committed.
	MaxHops int

	// VRRP and Checker report which roles monitor this instance,
	// resolved at block close from the vrrp / checker selector
	// keywords. With no selector in the block, every role monitors.
	VRRP    bool
	Checker bool
}

// newInstance returns an Instance carrying the field defaults.
func newInstance(name string) *Instance {
	return &Instance{
		Name:       name,
		MinRx:      DefaultMinRx,
		MinTx:      DefaultMinTx,
		IdleTx:     DefaultIdleTx,
		DetectMult: DefaultDetectMult,
		MaxHops:    DefaultMaxHops,
	}
}

// sameFamily reports whether both addresses are IPv4 or both IPv6.
func sameFamily(a, b netip.Addr) bool {
	return a.Is4() == b.Is4()
}

// -------------------------------------------------------------------------
// TrackedInstance
// -------------------------------------------------------------------------

// TrackedInstance is a reference, owned by the redundancy or checker
// role, to a BFD instance owned by the monitor role. The link is the
// name only; the owning role never holds a handle into the monitor
// role's data.
type TrackedInstance struct {
	// Name of the referenced bfd_instance.
	Name string

	// Weight is the priority delta applied while the instance is up.
	// Redundancy role only; always zero for the checker role.
	Weight int

	// Up is the instance's last known liveness, maintained by whatever
	// consumes the reference. Configuration always leaves it false.
	Up bool

	// selected records whether this role's selector keyword appeared
	// in the instance block, for end-of-load reconciliation.
	selected bool
}
