// Package commands implements the failoverctl CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatTable = "table"
	formatYAML  = "yaml"
)

// errUnsupportedFormat is returned when the requested output format is
// not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// formatCheckResults renders per-role validation results.
func formatCheckResults(results []checkResult, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(results)
	case formatYAML:
		return marshalYAML(results)
	case formatTable:
		return formatCheckTable(results)
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// formatDumps renders per-role parse results.
func formatDumps(dumps []roleDump, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(dumps)
	case formatYAML:
		return marshalYAML(dumps)
	case formatTable:
		return formatDumpTable(dumps)
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

// --- Table formatters ---

func formatCheckTable(results []checkResult) (string, error) {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tINSTANCES\tTRACKED\tERRORS\tWARNINGS\tRESULT")

	for _, r := range results {
		verdict := "ok"
		if r.Errors > 0 {
			verdict = "invalid"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Role, r.Instances, r.TrackedRefs, r.Errors, r.Warnings, verdict)
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush tabwriter: %w", err)
	}
	return buf.String(), nil
}

func formatDumpTable(dumps []roleDump) (string, error) {
	var buf strings.Builder

	for i, d := range dumps {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "role %s\n", d.Role)

		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		switch {
		case len(d.Instances) > 0:
			fmt.Fprintln(w, "NAME\tNEIGHBOR\tSOURCE\tMIN-RX\tMIN-TX\tIDLE-TX\tMULT\tTTL\tMAX-HOPS\tPASSIVE")
			for _, inst := range d.Instances {
				source := inst.Source
				if source == "" {
					source = "-"
				}
				maxHops := fmt.Sprintf("%d", inst.MaxHops)
				if inst.MaxHops < 0 {
					maxHops = "unlimited"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%t\n",
					inst.Name, inst.Neighbor, source,
					inst.MinRx, inst.MinTx, inst.IdleTx,
					inst.DetectMult, inst.TTL, maxHops, inst.Passive)
			}
		case len(d.Tracked) > 0:
			fmt.Fprintln(w, "NAME\tWEIGHT")
			for _, ref := range d.Tracked {
				fmt.Fprintf(w, "%s\t%d\n", ref.Name, ref.Weight)
			}
		default:
			fmt.Fprintln(w, "(nothing accepted)")
		}

		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
	}

	return buf.String(), nil
}

// --- Structured formatters ---

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data) + "\n", nil
}

func marshalYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal yaml: %w", err)
	}
	return string(data), nil
}
