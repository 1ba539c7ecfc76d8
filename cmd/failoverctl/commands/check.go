package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

// errConfigInvalid is returned when any role reported parse errors, so
// the command exits nonzero for scripting.
var errConfigInvalid = errors.New("configuration has errors")

// checkResult is the per-role outcome of a validation pass.
type checkResult struct {
	Role        string `json:"role"         yaml:"role"`
	Instances   int    `json:"instances"    yaml:"instances"`
	TrackedRefs int    `json:"tracked_refs" yaml:"tracked_refs"`
	Errors      int    `json:"errors"       yaml:"errors"`
	Warnings    int    `json:"warnings"     yaml:"warnings"`
}

func checkCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a BFD configuration file for each role",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			roles, err := selectedRoles()
			if err != nil {
				return err
			}

			results, err := checkFile(args[0], roles, verbose)
			if err != nil {
				return err
			}

			out, err := formatCheckResults(results, outputFormat)
			if err != nil {
				return fmt.Errorf("format results: %w", err)
			}
			fmt.Print(out)

			for _, r := range results {
				if r.Errors > 0 {
					return errConfigInvalid
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"print parser diagnostics while checking")

	return cmd
}

// checkFile runs one parse per role and collects the outcome. With
// verbose set, the parser's own diagnostics go to stderr.
func checkFile(path string, roles []bfdcfg.Role, verbose bool) ([]checkResult, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	results := make([]checkResult, 0, len(roles))
	for _, role := range roles {
		loader := bfdcfg.NewLoader(role,
			logger.With(slog.String("role", role.String())),
		)
		if err := loader.LoadFile(path); err != nil {
			return nil, fmt.Errorf("check %s as %s: %w", path, role, err)
		}

		stats := loader.Stats()
		results = append(results, checkResult{
			Role:        role.String(),
			Instances:   len(loader.Instances),
			TrackedRefs: len(loader.VRRPTracked) + len(loader.CheckerTracked),
			Errors:      stats.Errors,
			Warnings:    stats.Warnings,
		})
	}
	return results, nil
}
