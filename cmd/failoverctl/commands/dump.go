package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

// instanceView is the serializable projection of a parsed instance.
// Addresses and intervals are rendered as strings so JSON and YAML
// output stay readable.
type instanceView struct {
	Name       string `json:"name"                 yaml:"name"`
	Neighbor   string `json:"neighbor"             yaml:"neighbor"`
	Source     string `json:"source,omitempty"     yaml:"source,omitempty"`
	MinRx      string `json:"min_rx"               yaml:"min_rx"`
	MinTx      string `json:"min_tx"               yaml:"min_tx"`
	IdleTx     string `json:"idle_tx"              yaml:"idle_tx"`
	DetectMult uint8  `json:"multiplier"           yaml:"multiplier"`
	Passive    bool   `json:"passive"              yaml:"passive"`
	TTL        uint8  `json:"ttl"                  yaml:"ttl"`
	MaxHops    int    `json:"max_hops"             yaml:"max_hops"`
	VRRP       bool   `json:"vrrp_tracked"         yaml:"vrrp_tracked"`
	Checker    bool   `json:"checker_tracked"      yaml:"checker_tracked"`
}

// trackedView is the serializable projection of a tracked reference.
type trackedView struct {
	Name   string `json:"name"             yaml:"name"`
	Weight int    `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// roleDump is the full per-role output of the dump command.
type roleDump struct {
	Role      string         `json:"role"                yaml:"role"`
	Instances []instanceView `json:"instances,omitempty" yaml:"instances,omitempty"`
	Tracked   []trackedView  `json:"tracked,omitempty"   yaml:"tracked,omitempty"`
}

func dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Parse a BFD configuration file and print what each role accepted",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			roles, err := selectedRoles()
			if err != nil {
				return err
			}

			dumps, err := dumpFile(args[0], roles)
			if err != nil {
				return err
			}

			out, err := formatDumps(dumps, outputFormat)
			if err != nil {
				return fmt.Errorf("format dump: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}
}

// dumpFile parses the file once per role and projects the results.
func dumpFile(path string, roles []bfdcfg.Role) ([]roleDump, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dumps := make([]roleDump, 0, len(roles))
	for _, role := range roles {
		loader := bfdcfg.NewLoader(role,
			logger.With(slog.String("role", role.String())),
		)
		if err := loader.LoadFile(path); err != nil {
			return nil, fmt.Errorf("dump %s as %s: %w", path, role, err)
		}
		dumps = append(dumps, projectLoader(loader))
	}
	return dumps, nil
}

// projectLoader converts a loader's parse results into views.
func projectLoader(l *bfdcfg.Loader) roleDump {
	d := roleDump{Role: l.Role().String()}

	for _, inst := range l.Instances {
		view := instanceView{
			Name:       inst.Name,
			Neighbor:   inst.Neighbor.String(),
			MinRx:      inst.MinRx.String(),
			MinTx:      inst.MinTx.String(),
			IdleTx:     inst.IdleTx.String(),
			DetectMult: inst.DetectMult,
			Passive:    inst.Passive,
			TTL:        inst.TTL,
			MaxHops:    inst.MaxHops,
			VRRP:       inst.VRRP,
			Checker:    inst.Checker,
		}
		if inst.Source.IsValid() {
			view.Source = inst.Source.String()
		}
		d.Instances = append(d.Instances, view)
	}

	for _, ref := range l.VRRPTracked {
		d.Tracked = append(d.Tracked, trackedView{Name: ref.Name, Weight: ref.Weight})
	}
	for _, ref := range l.CheckerTracked {
		d.Tracked = append(d.Tracked, trackedView{Name: ref.Name})
	}

	return d
}
