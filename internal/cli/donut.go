package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/chart"
	"budget/internal/log"
)

func (c *CLI) donutCommand() *cobra.Command {
	var (
		minAngle float64
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "donut label=value [label=value...]",
		Short: "Print normalized donut angles for a set of amounts",
		Example: `  budgetctl donut rent=1000 food=300 snacks=1
  budgetctl donut --min-angle 30 --json a=1 b=2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slices, err := parseSlices(args)
			if err != nil {
				return err
			}
			donut, err := chart.BuildDonut(slices, minAngle, chart.NewFormatter())
			if err != nil {
				return err
			}
			if c.logger != nil {
				log.NewStructuredLogger(c.logger).LogDonutBuilt(cmd.Context(), minAngle, len(slices), donut.Fallback)
			}

			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(donut)
			}
			return writeDonutTable(c.out, donut)
		},
	}

	cmd.Flags().Float64Var(&minAngle, "min-angle", chart.DefaultMinAngleDeg, "minimum slice angle in degrees")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the donut as JSON")

	return cmd
}

// parseSlices reads label=value pairs. The last '=' separates the value so
// labels may contain one.
func parseSlices(args []string) ([]chart.Slice, error) {
	slices := make([]chart.Slice, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid slice %q: want label=value", arg)
		}
		label := strings.TrimSpace(arg[:i])
		if label == "" {
			return nil, fmt.Errorf("invalid slice %q: empty label", arg)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(arg[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid slice %q: %w", arg, err)
		}
		slices = append(slices, chart.Slice{Label: label, Value: value})
	}
	return slices, nil
}

func writeDonutTable(w io.Writer, d chart.Donut) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tVALUE\tADJUSTED\tDEGREES\tSTART\tTOOLTIP")
	for _, s := range d.Segments {
		fmt.Fprintf(tw, "%s\t%g\t%.4f\t%.2f\t%.2f\t%s\n",
			s.Label, s.Value, s.Adjusted, s.SpanDegrees(), s.StartAngle*180/math.Pi, s.Tooltip)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if d.Fallback {
		_, err := fmt.Fprintf(w, "\nmin angle %.2f° cannot be met, slices drawn equally\n", d.MinAngleDeg)
		return err
	}
	return nil
}
