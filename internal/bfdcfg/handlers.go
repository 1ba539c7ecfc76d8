package bfdcfg

import (
	"log/slog"
	"net/netip"
	"strconv"
	"time"

	"github.com/wolfguard/failoverd/internal/keyword"
)

// -------------------------------------------------------------------------
// Instance Builder
// -------------------------------------------------------------------------

// openInstance starts a new bfd_instance block. Name-length and
// uniqueness failures reject the whole block before any record exists.
func (l *Loader) openInstance(args []string) keyword.Result {
	if len(args) < 1 {
		l.log.Error("bfd_instance requires a name, ignoring block")
		l.stats.Errors++
		return keyword.AbortBlock
	}
	name := args[0]

	if len(name) >= InstanceNameMax {
		l.log.Error("bfd instance name too long, ignoring instance",
			slog.String("instance", name),
			slog.Int("max_length", InstanceNameMax-1),
		)
		l.stats.Errors++
		return keyword.AbortBlock
	}

	if l.findInstance(name) != nil {
		l.log.Error("bfd instance already configured, ignoring instance",
			slog.String("instance", name),
		)
		l.stats.Errors++
		return keyword.AbortBlock
	}

	l.Instances = append(l.Instances, newInstance(name))
	l.selected = 0
	return keyword.Continue
}

// setNeighbor handles neighbor_ip. A malformed or duplicate neighbor
// address is fatal to the whole instance: the partial record is removed
// and the rest of the block skipped.
func (l *Loader) setNeighbor(args []string) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	if len(args) < 1 {
		l.log.Error("bfd instance neighbor_ip requires an address, ignoring instance",
			slog.String("instance", inst.Name),
		)
		l.stats.Errors++
		l.dropCurrentInstance()
		return keyword.AbortBlock
	}

	addr, err := netip.ParseAddr(args[0])
	if err != nil {
		l.log.Error("bfd instance has malformed neighbor address, ignoring instance",
			slog.String("instance", inst.Name),
			slog.String("address", args[0]),
		)
		l.stats.Errors++
		l.dropCurrentInstance()
		return keyword.AbortBlock
	}

	if other := l.findByNeighbor(addr); other != nil {
		l.log.Error("bfd instance has duplicate neighbor address, ignoring instance",
			slog.String("instance", inst.Name),
			slog.String("address", args[0]),
			slog.String("conflicts_with", other.Name),
		)
		l.stats.Errors++
		l.dropCurrentInstance()
		return keyword.AbortBlock
	}

	inst.Neighbor = addr
	return keyword.Continue
}

// setSource handles source_ip. A malformed source address is a
// field-level error: logged, the field stays unset, the block continues.
func (l *Loader) setSource(args []string) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	if len(args) < 1 {
		l.log.Error("bfd instance source_ip requires an address, ignoring",
			slog.String("instance", inst.Name),
		)
		l.stats.Errors++
		return keyword.Continue
	}

	addr, err := netip.ParseAddr(args[0])
	if err != nil {
		l.log.Error("bfd instance has malformed source address, ignoring",
			slog.String("instance", inst.Name),
			slog.String("address", args[0]),
		)
		l.stats.Errors++
		return keyword.Continue
	}

	inst.Source = addr
	return keyword.Continue
}

func (l *Loader) setMinRx(args []string) keyword.Result {
	return l.setInterval("min_rx", args, MinRxMin, MinRxMax, func(inst *Instance, d time.Duration) {
		inst.MinRx = d
	})
}

func (l *Loader) setMinTx(args []string) keyword.Result {
	return l.setInterval("min_tx", args, MinTxMin, MinTxMax, func(inst *Instance, d time.Duration) {
		inst.MinTx = d
	})
}

func (l *Loader) setIdleTx(args []string) keyword.Result {
	return l.setInterval("idle_tx", args, IdleTxMin, IdleTxMax, func(inst *Instance, d time.Duration) {
		inst.IdleTx = d
	})
}

// setInterval parses a millisecond interval keyword. An unparsable or
// out-of-range value is rejected and the field keeps its prior value.
// The sensible-maximum warning is checked against the parsed number
// independently of whether the range check accepted it.
func (l *Loader) setInterval(kw string, args []string, minMs, maxMs int64, apply func(*Instance, time.Duration)) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	if len(args) < 1 {
		l.log.Error("bfd instance interval keyword requires a value, ignoring",
			slog.String("instance", inst.Name),
			slog.String("keyword", kw),
		)
		l.stats.Errors++
		return keyword.Continue
	}

	value, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || value < minMs || value > maxMs {
		l.log.Error("bfd instance interval value not valid, ignoring",
			slog.String("instance", inst.Name),
			slog.String("keyword", kw),
			slog.String("value", args[0]),
			slog.Int64("min_ms", minMs),
			slog.Int64("max_ms", maxMs),
		)
		l.stats.Errors++
	} else {
		apply(inst, time.Duration(value)*time.Millisecond)
	}

	if err == nil && value > IntervalMaxSensible {
		l.log.Warn("bfd instance interval value is larger than max sensible",
			slog.String("instance", inst.Name),
			slog.String("keyword", kw),
			slog.Int64("value_ms", value),
			slog.Int("max_sensible_ms", IntervalMaxSensible),
		)
		l.stats.Warnings++
	}

	return keyword.Continue
}

// setMultiplier handles the multiplier keyword.
func (l *Loader) setMultiplier(args []string) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	value, ok := l.parseIntField(inst, "multiplier", args, MultiplierMin, MultiplierMax)
	if ok {
		inst.DetectMult = uint8(value)
	}
	return keyword.Continue
}

// setPassive handles the argument-less passive keyword.
func (l *Loader) setPassive([]string) keyword.Result {
	if inst := l.currentInstance(); inst != nil {
		inst.Passive = true
	}
	return keyword.Continue
}

// setTTL handles both the ttl and hoplimit spellings. Zero is not an
// admissible configured value; an unset field stays zero and is
// resolved at block close.
func (l *Loader) setTTL(args []string) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	value, ok := l.parseIntField(inst, "ttl/hoplimit", args, 1, TTLMax)
	if ok {
		inst.TTL = uint8(value)
	}
	return keyword.Continue
}

// setMaxHops handles max_hops. -1 means unlimited.
func (l *Loader) setMaxHops(args []string) keyword.Result {
	inst := l.currentInstance()
	if inst == nil {
		return keyword.Continue
	}

	value, ok := l.parseIntField(inst, "max_hops", args, -1, TTLMax)
	if ok {
		inst.MaxHops = int(value)
	}
	return keyword.Continue
}

// parseIntField parses a base-10 integer keyword argument and range
// checks it. On any failure it logs, counts the error, and reports
// !ok so the field keeps its prior value.
func (l *Loader) parseIntField(inst *Instance, kw string, args []string, minVal, maxVal int64) (int64, bool) {
	if len(args) < 1 {
		l.log.Error("bfd instance keyword requires a value, ignoring",
			slog.String("instance", inst.Name),
			slog.String("keyword", kw),
		)
		l.stats.Errors++
		return 0, false
	}

	value, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || value < minVal || value > maxVal {
		l.log.Error("bfd instance value not valid, ignoring",
			slog.String("instance", inst.Name),
			slog.String("keyword", kw),
			slog.String("value", args[0]),
			slog.Int64("min", minVal),
			slog.Int64("max", maxVal),
		)
		l.stats.Errors++
		return 0, false
	}

	return value, true
}

// -------------------------------------------------------------------------
// Instance Validator
// -------------------------------------------------------------------------

// closeInstance validates the instance once every keyword in its block
// has been seen. A failed check discards the instance; the rest of the
// configuration loads normally.
func (l *Loader) closeInstance() {
	inst := l.currentInstance()
	if inst == nil {
		return
	}

	if !inst.Neighbor.IsValid() {
		l.log.Error("bfd instance has no neighbor address set, disabling instance",
			slog.String("instance", inst.Name),
		)
		l.stats.Errors++
		l.dropCurrentInstance()
		return
	}

	if inst.Source.IsValid() && !sameFamily(inst.Source, inst.Neighbor) {
		l.log.Error("bfd instance source and neighbor addresses are not of the same family, disabling instance",
			slog.String("instance", inst.Name),
			slog.String("source", inst.Source.String()),
			slog.String("neighbor", inst.Neighbor.String()),
		)
		l.stats.Errors++
		l.dropCurrentInstance()
		return
	}

	if inst.TTL == 0 {
		if inst.Neighbor.Is4() {
			inst.TTL = DefaultTTL
		} else {
			inst.TTL = DefaultHopLimit
		}
	}

	if inst.MaxHops > int(inst.TTL) {
		l.log.Info("bfd instance max_hops exceeds ttl/hoplimit, clamping",
			slog.String("instance", inst.Name),
			slog.Int("max_hops", inst.MaxHops),
			slog.Int("ttl", int(inst.TTL)),
		)
		l.stats.Warnings++
		inst.MaxHops = int(inst.TTL)
	}

	// With no selector keyword in the block, every compiled-in role
	// monitors the instance. Otherwise monitoring is opt-in.
	inst.VRRP = l.selected == 0 || l.selected.has(selVRRP)
	inst.Checker = l.selected == 0 || l.selected.has(selChecker)
}
