package bfdcfg_test

import (
	"io"
	"log/slog"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

// load parses conf for the given role, failing the test on scanner errors.
func load(t *testing.T, role bfdcfg.Role, conf string) *bfdcfg.Loader {
	t.Helper()

	l := bfdcfg.NewLoader(role, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := l.Load(strings.NewReader(conf)); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return l
}

// -------------------------------------------------------------------------
// Monitor Role
// -------------------------------------------------------------------------

func TestInstanceDefaults(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 192.168.1.1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	inst := l.Instances[0]

	if inst.Name != "lan" {
		t.Errorf("Name = %q, want %q", inst.Name, "lan")
	}
	if inst.Neighbor != netip.MustParseAddr("192.168.1.1") {
		t.Errorf("Neighbor = %v, want 192.168.1.1", inst.Neighbor)
	}
	if inst.Source.IsValid() {
		t.Errorf("Source = %v, want unset", inst.Source)
	}
	if inst.MinRx != bfdcfg.DefaultMinRx {
		t.Errorf("MinRx = %v, want %v", inst.MinRx, bfdcfg.DefaultMinRx)
	}
	if inst.MinTx != bfdcfg.DefaultMinTx {
		t.Errorf("MinTx = %v, want %v", inst.MinTx, bfdcfg.DefaultMinTx)
	}
	if inst.IdleTx != bfdcfg.DefaultIdleTx {
		t.Errorf("IdleTx = %v, want %v", inst.IdleTx, bfdcfg.DefaultIdleTx)
	}
	if inst.DetectMult != bfdcfg.DefaultDetectMult {
		t.Errorf("DetectMult = %d, want %d", inst.DetectMult, bfdcfg.DefaultDetectMult)
	}
	if inst.Passive {
		t.Error("Passive = true, want false")
	}
	if inst.MaxHops != bfdcfg.DefaultMaxHops {
		t.Errorf("MaxHops = %d, want %d", inst.MaxHops, bfdcfg.DefaultMaxHops)
	}

	// No selector keyword anywhere: monitored by every role.
	if !inst.VRRP || !inst.Checker {
		t.Errorf("VRRP = %v, Checker = %v, want both true", inst.VRRP, inst.Checker)
	}
}

func TestInstanceAllKeywords(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance uplink {
    neighbor_ip 10.0.0.2
    source_ip 10.0.0.1
    min_rx 100
    min_tx 150
    idle_tx 500
    multiplier 5
    passive
    ttl 64
    max_hops 10
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	inst := l.Instances[0]

	if inst.Source != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("Source = %v, want 10.0.0.1", inst.Source)
	}
	if inst.MinRx != 100*time.Millisecond {
		t.Errorf("MinRx = %v, want 100ms", inst.MinRx)
	}
	if inst.MinTx != 150*time.Millisecond {
		t.Errorf("MinTx = %v, want 150ms", inst.MinTx)
	}
	if inst.IdleTx != 500*time.Millisecond {
		t.Errorf("IdleTx = %v, want 500ms", inst.IdleTx)
	}
	if inst.DetectMult != 5 {
		t.Errorf("DetectMult = %d, want 5", inst.DetectMult)
	}
	if !inst.Passive {
		t.Error("Passive = false, want true")
	}
	if inst.TTL != 64 {
		t.Errorf("TTL = %d, want 64", inst.TTL)
	}
	if inst.MaxHops != 10 {
		t.Errorf("MaxHops = %d, want 10", inst.MaxHops)
	}

	if errs := l.Stats().Errors; errs != 0 {
		t.Errorf("Stats().Errors = %d, want 0", errs)
	}
}

func TestInstanceNameTooLong(t *testing.T) {
	t.Parallel()

	longName := strings.Repeat("x", bfdcfg.InstanceNameMax)

	// The rejected block's body must not leak into any other instance.
	l := load(t, bfdcfg.RoleBFD, `
bfd_instance `+longName+` {
    neighbor_ip 10.0.0.9
    min_rx 700
}
bfd_instance ok {
    neighbor_ip 10.0.0.1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	inst := l.Instances[0]

	if inst.Name != "ok" {
		t.Errorf("Name = %q, want %q", inst.Name, "ok")
	}
	if inst.MinRx != bfdcfg.DefaultMinRx {
		t.Errorf("MinRx = %v, want untouched default %v", inst.MinRx, bfdcfg.DefaultMinRx)
	}
	if l.Stats().Errors == 0 {
		t.Error("Stats().Errors = 0, want > 0")
	}
}

func TestInstanceNameMaxMinusOneAccepted(t *testing.T) {
	t.Parallel()

	name := strings.Repeat("y", bfdcfg.InstanceNameMax-1)

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance `+name+` {
    neighbor_ip 10.0.0.1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
}

func TestDuplicateInstanceName(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    min_rx 100
}
bfd_instance lan {
    neighbor_ip 10.0.0.2
    min_rx 200
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	inst := l.Instances[0]

	// The first declaration remains untouched.
	if inst.Neighbor != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("Neighbor = %v, want 10.0.0.1", inst.Neighbor)
	}
	if inst.MinRx != 100*time.Millisecond {
		t.Errorf("MinRx = %v, want 100ms", inst.MinRx)
	}
}

func TestDuplicateNeighborAddress(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance first {
    neighbor_ip 10.0.0.1
}
bfd_instance second {
    neighbor_ip 10.0.0.1
    min_rx 100
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if l.Instances[0].Name != "first" {
		t.Errorf("Name = %q, want %q", l.Instances[0].Name, "first")
	}
}

func TestMalformedNeighborAddress(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance bad {
    neighbor_ip not-an-address
    min_rx 100
}
bfd_instance good {
    neighbor_ip 10.0.0.1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if l.Instances[0].Name != "good" {
		t.Errorf("Name = %q, want %q", l.Instances[0].Name, "good")
	}
}

func TestMissingNeighborAddress(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance incomplete {
    min_rx 100
}
`)

	if len(l.Instances) != 0 {
		t.Fatalf("len(Instances) = %d, want 0", len(l.Instances))
	}
	if l.Stats().Errors == 0 {
		t.Error("Stats().Errors = 0, want > 0")
	}
}

func TestAddressFamilyMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		neighbor string
	}{
		{name: "v4 source v6 neighbor", source: "10.0.0.1", neighbor: "2001:db8::1"},
		{name: "v6 source v4 neighbor", source: "2001:db8::1", neighbor: "10.0.0.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := load(t, bfdcfg.RoleBFD, `
bfd_instance mixed {
    source_ip `+tt.source+`
    neighbor_ip `+tt.neighbor+`
}
`)

			if len(l.Instances) != 0 {
				t.Fatalf("len(Instances) = %d, want 0", len(l.Instances))
			}
		})
	}
}

func TestMalformedSourceIsFieldLevel(t *testing.T) {
	t.Parallel()

	// A bad source_ip is logged and dropped; the instance survives.
	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    source_ip garbage
    neighbor_ip 10.0.0.1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if l.Instances[0].Source.IsValid() {
		t.Errorf("Source = %v, want unset", l.Instances[0].Source)
	}
}

func TestTTLResolvedFromFamily(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance v4 {
    neighbor_ip 10.0.0.1
}
bfd_instance v6 {
    neighbor_ip 2001:db8::1
}
`)

	if len(l.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(l.Instances))
	}

	if ttl := l.Instances[0].TTL; ttl != bfdcfg.DefaultTTL {
		t.Errorf("v4 TTL = %d, want %d", ttl, bfdcfg.DefaultTTL)
	}
	if ttl := l.Instances[1].TTL; ttl != bfdcfg.DefaultHopLimit {
		t.Errorf("v6 TTL = %d, want %d", ttl, bfdcfg.DefaultHopLimit)
	}
}

func TestHoplimitAlias(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance v6 {
    neighbor_ip 2001:db8::1
    hoplimit 32
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if ttl := l.Instances[0].TTL; ttl != 32 {
		t.Errorf("TTL = %d, want 32", ttl)
	}
}

func TestTTLZeroRejected(t *testing.T) {
	t.Parallel()

	// ttl 0 is not an admissible configured value; the field stays
	// unset and resolves to the family default at block close.
	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    ttl 0
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if ttl := l.Instances[0].TTL; ttl != bfdcfg.DefaultTTL {
		t.Errorf("TTL = %d, want resolved default %d", ttl, bfdcfg.DefaultTTL)
	}
	if l.Stats().Errors == 0 {
		t.Error("Stats().Errors = 0, want > 0")
	}
}

func TestMaxHopsClampedToTTL(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    ttl 64
    max_hops 200
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if hops := l.Instances[0].MaxHops; hops != 64 {
		t.Errorf("MaxHops = %d, want clamped 64", hops)
	}
	if l.Stats().Warnings == 0 {
		t.Error("Stats().Warnings = 0, want > 0 for clamping")
	}
}

func TestMaxHopsUnlimited(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    max_hops -1
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
	if hops := l.Instances[0].MaxHops; hops != -1 {
		t.Errorf("MaxHops = %d, want -1", hops)
	}
}

func TestIntervalRejectedKeepsDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "zero", line: "min_rx 0"},
		{name: "negative", line: "min_rx -5"},
		{name: "above max", line: "min_rx 4294968"},
		{name: "malformed", line: "min_rx fast"},
		{name: "missing value", line: "min_rx"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    `+tt.line+`
    neighbor_ip 10.0.0.1
}
`)

			if len(l.Instances) != 1 {
				t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
			}
			if got := l.Instances[0].MinRx; got != bfdcfg.DefaultMinRx {
				t.Errorf("MinRx = %v, want default %v", got, bfdcfg.DefaultMinRx)
			}
			if l.Stats().Errors == 0 {
				t.Error("Stats().Errors = 0, want > 0")
			}
		})
	}
}

func TestIntervalSensibleWarningApplied(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    min_tx 5000
}
`)

	inst := l.Instances[0]
	// In range but above sensible maximum: warned, still applied.
	if inst.MinTx != 5000*time.Millisecond {
		t.Errorf("MinTx = %v, want 5s", inst.MinTx)
	}
	if l.Stats().Warnings != 1 {
		t.Errorf("Stats().Warnings = %d, want 1", l.Stats().Warnings)
	}
	if l.Stats().Errors != 0 {
		t.Errorf("Stats().Errors = %d, want 0", l.Stats().Errors)
	}
}

func TestIntervalWarningIndependentOfAcceptance(t *testing.T) {
	t.Parallel()

	// Above the admissible maximum: rejected, yet the sensible-max
	// warning still fires for the parsed number.
	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    idle_tx 4294968
}
`)

	inst := l.Instances[0]
	if inst.IdleTx != bfdcfg.DefaultIdleTx {
		t.Errorf("IdleTx = %v, want default %v", inst.IdleTx, bfdcfg.DefaultIdleTx)
	}
	if l.Stats().Errors != 1 {
		t.Errorf("Stats().Errors = %d, want 1", l.Stats().Errors)
	}
	if l.Stats().Warnings != 1 {
		t.Errorf("Stats().Warnings = %d, want 1", l.Stats().Warnings)
	}
}

func TestMultiplierRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  uint8
	}{
		{name: "minimum", value: "1", want: 1},
		{name: "maximum", value: "255", want: 255},
		{name: "below minimum", value: "0", want: bfdcfg.DefaultDetectMult},
		{name: "above maximum", value: "256", want: bfdcfg.DefaultDetectMult},
		{name: "malformed", value: "many", want: bfdcfg.DefaultDetectMult},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    multiplier `+tt.value+`
}
`)

			if got := l.Instances[0].DetectMult; got != tt.want {
				t.Errorf("DetectMult = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnknownKeywordInsideInstance(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    no_such_keyword 42
}
`)

	if len(l.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(l.Instances))
	}
}

// -------------------------------------------------------------------------
// Role Selectors
// -------------------------------------------------------------------------

func TestSelectorsResolveMonitoringFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		selectors   string
		wantVRRP    bool
		wantChecker bool
	}{
		{name: "none", selectors: "", wantVRRP: true, wantChecker: true},
		{name: "vrrp only", selectors: "vrrp\n", wantVRRP: true, wantChecker: false},
		{name: "checker only", selectors: "checker\n", wantVRRP: false, wantChecker: true},
		{name: "both", selectors: "vrrp\n    checker\n", wantVRRP: true, wantChecker: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := load(t, bfdcfg.RoleBFD, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    `+tt.selectors+`
}
`)

			inst := l.Instances[0]
			if inst.VRRP != tt.wantVRRP {
				t.Errorf("VRRP = %v, want %v", inst.VRRP, tt.wantVRRP)
			}
			if inst.Checker != tt.wantChecker {
				t.Errorf("Checker = %v, want %v", inst.Checker, tt.wantChecker)
			}
		})
	}
}

func TestSelectorAccumulatorResetsPerBlock(t *testing.T) {
	t.Parallel()

	// The vrrp selector in the first block must not leak into the second.
	l := load(t, bfdcfg.RoleBFD, `
bfd_instance first {
    neighbor_ip 10.0.0.1
    vrrp
}
bfd_instance second {
    neighbor_ip 10.0.0.2
    checker
}
`)

	if len(l.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(l.Instances))
	}

	first, second := l.Instances[0], l.Instances[1]
	if !first.VRRP || first.Checker {
		t.Errorf("first: VRRP = %v, Checker = %v, want true/false", first.VRRP, first.Checker)
	}
	if second.VRRP || !second.Checker {
		t.Errorf("second: VRRP = %v, Checker = %v, want false/true", second.VRRP, second.Checker)
	}
}

// -------------------------------------------------------------------------
// Redundancy (VRRP) Role
// -------------------------------------------------------------------------

func TestVRRPTracksAllByDefault(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleVRRP, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    min_rx 100
}
bfd_instance wan {
    neighbor_ip 10.0.0.2
}
`)

	if len(l.VRRPTracked) != 2 {
		t.Fatalf("len(VRRPTracked) = %d, want 2", len(l.VRRPTracked))
	}

	for i, want := range []string{"lan", "wan"} {
		ref := l.VRRPTracked[i]
		if ref.Name != want {
			t.Errorf("VRRPTracked[%d].Name = %q, want %q", i, ref.Name, want)
		}
		if ref.Weight != 0 {
			t.Errorf("VRRPTracked[%d].Weight = %d, want 0", i, ref.Weight)
		}
		if ref.Up {
			t.Errorf("VRRPTracked[%d].Up = true, want false", i)
		}
	}

	// The monitor role's list stays empty in a vrrp-role parse.
	if len(l.Instances) != 0 {
		t.Errorf("len(Instances) = %d, want 0", len(l.Instances))
	}
}

func TestVRRPWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "positive", value: "120", want: 120},
		{name: "negative", value: "-50", want: -50},
		{name: "minimum", value: "-253", want: -253},
		{name: "maximum", value: "253", want: 253},
		{name: "below minimum", value: "-254", want: 0},
		{name: "above maximum", value: "254", want: 0},
		{name: "malformed", value: "heavy", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l := load(t, bfdcfg.RoleVRRP, `
bfd_instance lan {
    weight `+tt.value+`
}
`)

			if len(l.VRRPTracked) != 1 {
				t.Fatalf("len(VRRPTracked) = %d, want 1", len(l.VRRPTracked))
			}
			if got := l.VRRPTracked[0].Weight; got != tt.want {
				t.Errorf("Weight = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVRRPDuplicateTracked(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleVRRP, `
bfd_instance lan {
    weight 10
}
bfd_instance lan {
    weight 99
}
`)

	if len(l.VRRPTracked) != 1 {
		t.Fatalf("len(VRRPTracked) = %d, want 1", len(l.VRRPTracked))
	}
	// The duplicate block is skipped wholesale; the original weight stays.
	if got := l.VRRPTracked[0].Weight; got != 10 {
		t.Errorf("Weight = %d, want 10", got)
	}
}

func TestVRRPSelectorOptIn(t *testing.T) {
	t.Parallel()

	// Once any selector appears in the load, tracking is opt-in,
	// including for blocks declared before the first selector.
	l := load(t, bfdcfg.RoleVRRP, `
bfd_instance early {
    neighbor_ip 10.0.0.1
}
bfd_instance wanted {
    vrrp
    weight 20
}
bfd_instance checker_only {
    checker
}
`)

	if len(l.VRRPTracked) != 1 {
		t.Fatalf("len(VRRPTracked) = %d, want 1", len(l.VRRPTracked))
	}
	if l.VRRPTracked[0].Name != "wanted" {
		t.Errorf("Name = %q, want %q", l.VRRPTracked[0].Name, "wanted")
	}
	if l.VRRPTracked[0].Weight != 20 {
		t.Errorf("Weight = %d, want 20", l.VRRPTracked[0].Weight)
	}
}

// -------------------------------------------------------------------------
// Checker Role
// -------------------------------------------------------------------------

func TestCheckerTracksAllByDefault(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleChecker, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    weight 10
}
bfd_instance wan {
    neighbor_ip 10.0.0.2
}
`)

	if len(l.CheckerTracked) != 2 {
		t.Fatalf("len(CheckerTracked) = %d, want 2", len(l.CheckerTracked))
	}

	// weight belongs to the redundancy role; here it parses but is ignored.
	if got := l.CheckerTracked[0].Weight; got != 0 {
		t.Errorf("Weight = %d, want 0", got)
	}
}

func TestCheckerDroppedWhenOnlyVRRPSelected(t *testing.T) {
	t.Parallel()

	// One instance opted into vrrp, none into checker: the selector
	// was used somewhere, so checker tracking drops everywhere.
	l := load(t, bfdcfg.RoleChecker, `
bfd_instance a {
    vrrp
}
bfd_instance b {
    neighbor_ip 10.0.0.2
}
`)

	if len(l.CheckerTracked) != 0 {
		t.Fatalf("len(CheckerTracked) = %d, want 0", len(l.CheckerTracked))
	}
}

func TestCheckerSelectorOptIn(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleChecker, `
bfd_instance a {
    vrrp
    checker
}
bfd_instance b {
    vrrp
}
`)

	if len(l.CheckerTracked) != 1 {
		t.Fatalf("len(CheckerTracked) = %d, want 1", len(l.CheckerTracked))
	}
	if l.CheckerTracked[0].Name != "a" {
		t.Errorf("Name = %q, want %q", l.CheckerTracked[0].Name, "a")
	}
}

// -------------------------------------------------------------------------
// Inactive Role and Re-entrancy
// -------------------------------------------------------------------------

func TestRoleNoneIgnoresEverything(t *testing.T) {
	t.Parallel()

	l := load(t, bfdcfg.RoleNone, `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    min_rx 100
    vrrp
    weight 50
}
`)

	if len(l.Instances) != 0 {
		t.Errorf("len(Instances) = %d, want 0", len(l.Instances))
	}
	if len(l.VRRPTracked) != 0 {
		t.Errorf("len(VRRPTracked) = %d, want 0", len(l.VRRPTracked))
	}
	if len(l.CheckerTracked) != 0 {
		t.Errorf("len(CheckerTracked) = %d, want 0", len(l.CheckerTracked))
	}
	if l.Stats().Errors != 0 {
		t.Errorf("Stats().Errors = %d, want 0", l.Stats().Errors)
	}
}

func TestRepeatedLoadsAreDeterministic(t *testing.T) {
	t.Parallel()

	conf := `
bfd_instance lan {
    neighbor_ip 10.0.0.1
    vrrp
}
bfd_instance wan {
    neighbor_ip 10.0.0.2
    checker
}
`

	l := bfdcfg.NewLoader(bfdcfg.RoleBFD, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var first []bfdcfg.Instance
	for run := 0; run < 3; run++ {
		if err := l.Load(strings.NewReader(conf)); err != nil {
			t.Fatalf("run %d: Load() error: %v", run, err)
		}

		got := make([]bfdcfg.Instance, len(l.Instances))
		for i, inst := range l.Instances {
			got[i] = *inst
		}

		if run == 0 {
			first = got
			continue
		}

		if len(got) != len(first) {
			t.Fatalf("run %d: len = %d, want %d", run, len(got), len(first))
		}
		for i := range got {
			if got[i] != first[i] {
				t.Errorf("run %d: instance %d = %+v, want %+v", run, i, got[i], first[i])
			}
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	l := bfdcfg.NewLoader(bfdcfg.RoleBFD, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := l.LoadFile("/nonexistent/bfd.conf"); err == nil {
		t.Fatal("LoadFile() returned nil error for nonexistent file")
	}
}
