package bfdcfg

import (
	"log/slog"
	"strconv"

	"github.com/wolfguard/failoverd/internal/keyword"
)

// Cross-reference registry: the redundancy and checker roles do not
// build Instance records. Each registers a provisional TrackedInstance
// when a bfd_instance block opens and decides at block close (and in
// the end-of-load sweep) whether to keep it, based on the vrrp /
// checker selector keywords.

// -------------------------------------------------------------------------
// Redundancy (VRRP) Role
// -------------------------------------------------------------------------

// openVRRPTracked provisionally registers a tracked reference for the
// redundancy role. A duplicate name skips the block without disturbing
// the existing reference.
func (l *Loader) openVRRPTracked(args []string) keyword.Result {
	l.selected = 0

	if len(args) < 1 {
		l.log.Error("bfd_instance requires a name, ignoring block")
		l.stats.Errors++
		return keyword.AbortBlock
	}
	name := args[0]

	if findTracked(l.VRRPTracked, name) != nil {
		l.log.Info("bfd instance already tracked, ignoring duplicate",
			slog.String("instance", name),
		)
		l.stats.Warnings++
		return keyword.AbortBlock
	}

	l.VRRPTracked = append(l.VRRPTracked, &TrackedInstance{Name: name})
	return keyword.Continue
}

// setWeight handles the weight keyword, live only for the redundancy
// role. An out-of-range or malformed value leaves the weight at zero.
func (l *Loader) setWeight(args []string) keyword.Result {
	if len(l.VRRPTracked) == 0 {
		return keyword.Continue
	}
	ref := l.VRRPTracked[len(l.VRRPTracked)-1]

	if len(args) < 1 {
		l.log.Error("bfd instance weight requires a value, ignoring",
			slog.String("instance", ref.Name),
		)
		l.stats.Errors++
		return keyword.Continue
	}

	value, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || value < WeightMin || value > WeightMax {
		l.log.Error("bfd instance weight value not valid, ignoring",
			slog.String("instance", ref.Name),
			slog.String("value", args[0]),
			slog.Int("min", WeightMin),
			slog.Int("max", WeightMax),
		)
		l.stats.Errors++
		return keyword.Continue
	}

	ref.Weight = int(value)
	return keyword.Continue
}

// closeVRRPTracked resolves the provisional reference at block close.
// Once any selector keyword has been seen in the load, tracking is
// opt-in: a block that never named vrrp loses its reference.
func (l *Loader) closeVRRPTracked() {
	if len(l.VRRPTracked) == 0 {
		return
	}
	ref := l.VRRPTracked[len(l.VRRPTracked)-1]
	ref.selected = l.selected.has(selVRRP)

	if l.anySelector && !ref.selected {
		l.log.Debug("bfd instance not selected for vrrp tracking, dropping reference",
			slog.String("instance", ref.Name),
		)
		l.VRRPTracked = l.VRRPTracked[:len(l.VRRPTracked)-1]
	}
}

// -------------------------------------------------------------------------
// Checker Role
// -------------------------------------------------------------------------

// openCheckerTracked provisionally registers a name-only tracked
// reference for the health-checker role.
func (l *Loader) openCheckerTracked(args []string) keyword.Result {
	l.selected = 0

	if len(args) < 1 {
		l.log.Error("bfd_instance requires a name, ignoring block")
		l.stats.Errors++
		return keyword.AbortBlock
	}
	name := args[0]

	if findTracked(l.CheckerTracked, name) != nil {
		l.log.Info("bfd instance already tracked, ignoring duplicate",
			slog.String("instance", name),
		)
		l.stats.Warnings++
		return keyword.AbortBlock
	}

	l.CheckerTracked = append(l.CheckerTracked, &TrackedInstance{Name: name})
	return keyword.Continue
}

// closeCheckerTracked mirrors closeVRRPTracked for the checker role.
func (l *Loader) closeCheckerTracked() {
	if len(l.CheckerTracked) == 0 {
		return
	}
	ref := l.CheckerTracked[len(l.CheckerTracked)-1]
	ref.selected = l.selected.has(selChecker)

	if l.anySelector && !ref.selected {
		l.log.Debug("bfd instance not selected for checker tracking, dropping reference",
			slog.String("instance", ref.Name),
		)
		l.CheckerTracked = l.CheckerTracked[:len(l.CheckerTracked)-1]
	}
}
