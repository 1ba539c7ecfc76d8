package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wolfguard/failoverd/internal/bfdcfg"
)

var (
	// outputFormat controls the output format for all commands.
	outputFormat string

	// roleNames selects which parser roles run over the file.
	roleNames []string
)

// errUnknownRole is returned when --roles names a role the parser does
// not implement.
var errUnknownRole = errors.New("unknown role")

// rootCmd is the top-level cobra command for failoverctl.
var rootCmd = &cobra.Command{
	Use:   "failoverctl",
	Short: "Inspect and validate BFD instance configuration files",
	Long: "failoverctl parses keepalived-style bfd_instance configuration files " +
		"the same way the failoverd daemon does, one pass per role, and reports " +
		"what each role would accept.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table",
		"output format: table, json, yaml")
	rootCmd.PersistentFlags().StringSliceVar(&roleNames, "roles",
		[]string{"bfd", "vrrp", "checker"},
		"parser roles to run: bfd, vrrp, checker")

	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// selectedRoles resolves the --roles flag into parser roles.
func selectedRoles() ([]bfdcfg.Role, error) {
	byName := map[string]bfdcfg.Role{
		"bfd":     bfdcfg.RoleBFD,
		"vrrp":    bfdcfg.RoleVRRP,
		"checker": bfdcfg.RoleChecker,
	}

	roles := make([]bfdcfg.Role, 0, len(roleNames))
	for _, name := range roleNames {
		role, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownRole, name)
		}
		roles = append(roles, role)
	}
	return roles, nil
}
