// Package cli implements the lattice command-line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format       string // "json" | "text"
	ScenarioFile string

	// Overrides applied on top of the scenario when set.
	AxisLimit  int
	Entity     string
	VoterFrom  string
	VoterTo    string
	Unilateral bool
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lattice",
		Short: "Explore the Pythagorean reputation lattice",
		Long: `Generate integer right-triangle lattice points, derive voter buys and
rank the sell targets an entity may move to under the sell-move policy.

Inputs come from a YAML scenario file (--scenario) with per-flag overrides.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	f.StringVarP(&opts.ScenarioFile, "scenario", "s", "", "YAML scenario file")
	f.IntVarP(&opts.AxisLimit, "axis-limit", "L", 0, "axis limit override")
	f.StringVar(&opts.Entity, "entity", "", "entity position override as x,y")
	f.StringVar(&opts.VoterFrom, "voter-from", "", "voter buy origin override as x,y")
	f.StringVar(&opts.VoterTo, "voter-to", "", "voter buy destination override as x,y")
	f.BoolVarP(&opts.Unilateral, "unilateral", "u", false, "allow a single coordinate to increase")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRankCommand(opts))
	cmd.AddCommand(NewRandomCommand(opts))

	return cmd
}

// Scenario resolves the effective inputs from the scenario file and flags.
func (o *RootOptions) Scenario(cmd *cobra.Command) (scenario.Scenario, error) {
	sc := scenario.Default()
	if o.ScenarioFile != "" {
		loaded, err := scenario.Load(o.ScenarioFile)
		if err != nil {
			return sc, err
		}
		sc = loaded
	}

	if o.AxisLimit != 0 {
		sc.AxisLimit = o.AxisLimit
	}
	for _, ov := range []struct {
		flag, value string
		dst         *scenario.Point
	}{
		{"entity", o.Entity, &sc.Entity},
		{"voter-from", o.VoterFrom, &sc.Voter.From},
		{"voter-to", o.VoterTo, &sc.Voter.To},
	} {
		if ov.value == "" {
			continue
		}
		c, err := ParseCoord(ov.value)
		if err != nil {
			return sc, fmt.Errorf("--%s: %w", ov.flag, err)
		}
		*ov.dst = scenario.Point{X: c.X, Y: c.Y}
	}
	if cmd.Flags().Changed("unilateral") {
		sc.AllowUnilateralIncrement = o.Unilateral
	}
	return sc, sc.Validate()
}

// ParseCoord parses "x,y".
func ParseCoord(s string) (lattice.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return lattice.Coord{}, fmt.Errorf("coordinate %q must be x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return lattice.Coord{}, fmt.Errorf("coordinate %q: bad x: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return lattice.Coord{}, fmt.Errorf("coordinate %q: bad y: %w", s, err)
	}
	return lattice.Coord{X: x, Y: y}, nil
}

func (o *RootOptions) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
