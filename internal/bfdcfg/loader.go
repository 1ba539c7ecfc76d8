package bfdcfg

import (
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"

	"github.com/wolfguard/failoverd/internal/keyword"
)

// -------------------------------------------------------------------------
// Roles
// -------------------------------------------------------------------------

// Role identifies which daemon process is consuming the configuration.
// Every role parses the same text; the role decides which keyword
// handlers are live and which are accepted but ignored.
type Role int

const (
	// RoleNone is the parent (or any uninterested) process: all BFD
	// keywords parse but none take effect.
	RoleNone Role = iota

	// RoleBFD is the liveness-monitor process. It owns the full
	// Instance records.
	RoleBFD

	// RoleVRRP is the redundancy / virtual-router process. It owns
	// tracked references with a priority weight.
	RoleVRRP

	// RoleChecker is the backend health-checker process. It owns
	// name-only tracked references.
	RoleChecker
)

// String returns the role name as used in logs and metric labels.
func (r Role) String() string {
	switch r {
	case RoleBFD:
		return "bfd"
	case RoleVRRP:
		return "vrrp"
	case RoleChecker:
		return "checker"
	default:
		return "none"
	}
}

// roleSet is a bit set of roles named by selector keywords.
type roleSet uint8

const (
	selVRRP roleSet = 1 << iota
	selChecker
)

func (s roleSet) has(bit roleSet) bool { return s&bit != 0 }

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// Stats summarizes one configuration load.
type Stats struct {
	// Errors counts configuration errors: malformed or out-of-range
	// values, duplicates, and instances discarded by validation.
	Errors int

	// Warnings counts informational findings that did not reject a
	// value, such as intervals above the sensible maximum.
	Warnings int
}

// Loader parses bfd_instance configuration for a single role. All state
// is per-load: Load resets the result lists and accumulators first, so
// one Loader may parse repeatedly and independent loads of the same
// text yield structurally identical results.
//
// A Loader is not safe for concurrent use; parsing is single-threaded
// by design.
type Loader struct {
	role Role
	log  *slog.Logger

	// Instances is the monitor role's result list. The instance being
	// built is always the tail; committed instances are valid.
	Instances []*Instance

	// VRRPTracked and CheckerTracked are the cross-reference result
	// lists for the redundancy and checker roles.
	VRRPTracked    []*TrackedInstance
	CheckerTracked []*TrackedInstance

	// selected accumulates the selector keywords seen in the current
	// instance block. Reset whenever a block opens, read at close.
	selected roleSet

	// anySelector reports whether any selector keyword was seen
	// anywhere in this load. Once true, role tracking is opt-in.
	anySelector bool

	stats Stats
}

// NewLoader creates a Loader for the given role. If logger is nil,
// slog.Default() is used.
func NewLoader(role Role, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{role: role, log: logger}
}

// Role returns the role this Loader parses for.
func (l *Loader) Role() Role { return l.role }

// Stats returns the error and warning counts of the most recent load.
func (l *Loader) Stats() Stats { return l.stats }

// Load parses configuration text from r. Individual malformed values
// and discarded instances are reported through the logger and counted
// in Stats; only unreadable input or an unterminated block returns an
// error.
func (l *Loader) Load(r io.Reader) error {
	l.reset()

	reg := keyword.NewRegistry()
	l.installKeywords(reg)

	if err := keyword.NewScanner(reg, l.log).Run(r); err != nil {
		return fmt.Errorf("parse bfd configuration: %w", err)
	}

	l.reconcileTracked()
	return nil
}

// LoadFile parses the configuration file at path.
func (l *Loader) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open bfd configuration: %w", err)
	}
	defer f.Close()

	return l.Load(f)
}

// reset clears all per-load state.
func (l *Loader) reset() {
	l.Instances = nil
	l.VRRPTracked = nil
	l.CheckerTracked = nil
	l.selected = 0
	l.anySelector = false
	l.stats = Stats{}
}

// -------------------------------------------------------------------------
// Keyword Activation
// -------------------------------------------------------------------------

// installKeywords wires the bfd_instance keyword tree for l's role.
// Exactly one root handler variant is installed; the instance field
// keywords are live only for the monitor role, the weight keyword only
// for the redundancy role. The vrrp / checker selector keywords are
// live for every role so that selection state is tracked identically
// regardless of which process parses.
func (l *Loader) installKeywords(reg *keyword.Registry) {
	var root *keyword.Keyword

	switch l.role {
	case RoleBFD:
		root = reg.Root("bfd_instance", l.openInstance)
		root.End(l.closeInstance)
	case RoleVRRP:
		root = reg.Root("bfd_instance", l.openVRRPTracked)
		root.End(l.closeVRRPTracked)
	case RoleChecker:
		root = reg.Root("bfd_instance", l.openCheckerTracked)
		root.End(l.closeCheckerTracked)
	default:
		root = reg.Root("bfd_instance", l.openIgnored)
	}

	live := l.role == RoleBFD
	sub := func(name string, h keyword.Handler) {
		if live {
			root.Sub(name, h)
		} else {
			root.Sub(name, l.ignore)
		}
	}

	sub("source_ip", l.setSource)
	sub("neighbor_ip", l.setNeighbor)
	sub("min_rx", l.setMinRx)
	sub("min_tx", l.setMinTx)
	sub("idle_tx", l.setIdleTx)
	sub("multiplier", l.setMultiplier)
	sub("passive", l.setPassive)
	sub("ttl", l.setTTL)
	sub("hoplimit", l.setTTL)
	sub("max_hops", l.setMaxHops)

	if l.role == RoleVRRP {
		root.Sub("weight", l.setWeight)
	} else {
		root.Sub("weight", l.ignore)
	}

	root.Sub("vrrp", l.markVRRP)
	root.Sub("checker", l.markChecker)
}

// ignore accepts a keyword another role owns without acting on it.
func (l *Loader) ignore([]string) keyword.Result {
	return keyword.Continue
}

// openIgnored opens a bfd_instance block for a role that ignores BFD
// configuration entirely. The selector accumulator is still reset so
// the selector keywords stay well-defined.
func (l *Loader) openIgnored([]string) keyword.Result {
	l.selected = 0
	return keyword.Continue
}

// markVRRP records that the current instance opted into redundancy-role
// monitoring.
func (l *Loader) markVRRP([]string) keyword.Result {
	l.selected |= selVRRP
	l.anySelector = true
	return keyword.Continue
}

// markChecker records that the current instance opted into checker-role
// monitoring.
func (l *Loader) markChecker([]string) keyword.Result {
	l.selected |= selChecker
	l.anySelector = true
	return keyword.Continue
}

// -------------------------------------------------------------------------
// Lookup Helpers
// -------------------------------------------------------------------------

// findInstance returns the committed or in-progress instance with the
// given name, or nil.
func (l *Loader) findInstance(name string) *Instance {
	for _, inst := range l.Instances {
		if inst.Name == name {
			return inst
		}
	}
	return nil
}

// findByNeighbor returns the instance with the given neighbor address,
// or nil.
func (l *Loader) findByNeighbor(addr netip.Addr) *Instance {
	for _, inst := range l.Instances {
		if inst.Neighbor == addr {
			return inst
		}
	}
	return nil
}

func findTracked(refs []*TrackedInstance, name string) *TrackedInstance {
	for _, ref := range refs {
		if ref.Name == name {
			return ref
		}
	}
	return nil
}

// currentInstance returns the instance under construction: the tail of
// the list. Nil when no block is open, which only happens if a field
// handler runs outside a bfd_instance block.
func (l *Loader) currentInstance() *Instance {
	if len(l.Instances) == 0 {
		return nil
	}
	return l.Instances[len(l.Instances)-1]
}

// dropCurrentInstance removes the instance under construction.
func (l *Loader) dropCurrentInstance() {
	l.Instances = l.Instances[:len(l.Instances)-1]
}

// -------------------------------------------------------------------------
// End-of-load Reconciliation
// -------------------------------------------------------------------------

// reconcileTracked drops tracked references whose role was never
// explicitly selected, once any selector keyword appeared in the load.
// Block-close handlers already drop references when a selector had been
// seen by then; this sweep also covers references whose blocks closed
// before the first selector appeared, so the result is independent of
// declaration order.
func (l *Loader) reconcileTracked() {
	if !l.anySelector {
		return
	}
	l.VRRPTracked = keepSelected(l.VRRPTracked)
	l.CheckerTracked = keepSelected(l.CheckerTracked)
}

func keepSelected(refs []*TrackedInstance) []*TrackedInstance {
	kept := refs[:0]
	for _, ref := range refs {
		if ref.selected {
			kept = append(kept, ref)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
