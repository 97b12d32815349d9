package cli

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "List lattice points for the axis limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.Scenario(cmd)
			if err != nil {
				return err
			}
			points := lattice.Generate(sc.AxisLimit)
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return opts.writeJSON(out, points)
			}

			cyan.Fprintf(out, "%d points within axis limit %d\n", len(points), sc.AxisLimit)
			for _, p := range points {
				fmt.Fprintf(out, "  %-9s cost %4g  reputation %.4f\n", p.Coord(), p.Cost, p.Reputation)
			}
			return nil
		},
	}
}

// NewMoveCommand creates the move command.
func NewMoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move",
		Short: "Show the voter buy derived from --voter-from and --voter-to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.Scenario(cmd)
			if err != nil {
				return err
			}
			move := sc.Move()
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return opts.writeJSON(out, move)
			}

			cyan.Fprintf(out, "%s -> %s\n", move.From, move.To)
			fmt.Fprintf(out, "  delta        (%d,%d)\n", move.DeltaX, move.DeltaY)
			fmt.Fprintf(out, "  delta cost   %g\n", move.DeltaCost)
			fmt.Fprintf(out, "  token earned %g\n", move.TokenEarned)
			return nil
		},
	}
}

// CheckResult is the JSON form of a check.
type CheckResult struct {
	Target lattice.Point         `json:"target"`
	Valid  bool                  `json:"valid"`
	Clause string                `json:"clause,omitempty"`
	Reason string                `json:"reason,omitempty"`
	Record *lattice.TargetRecord `json:"record,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <x,y>",
		Short: "Check whether a point is a valid sell target for the entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.Scenario(cmd)
			if err != nil {
				return err
			}
			c, err := ParseCoord(args[0])
			if err != nil {
				return err
			}

			target := c.Point()
			move := sc.Move()
			entity := sc.Entity.Coord()
			res := CheckResult{Target: target, Valid: true}

			err = lattice.CheckSellMove(target, entity, move.Holdings(), sc.AllowUnilateralIncrement, sc.AxisLimit)
			var se *lattice.SellMoveError
			switch {
			case errors.As(err, &se):
				res.Valid = false
				res.Clause = se.Clause.String()
				res.Reason = se.Message
			case err != nil:
				return err
			default:
				rec := lattice.NewTargetRecord(target, entity, move)
				res.Record = &rec
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return opts.writeJSON(out, res)
			}
			if !res.Valid {
				red.Fprintf(out, "✗ %s rejected by %s: %s\n", target.Coord(), res.Clause, res.Reason)
				return nil
			}
			green.Fprintf(out, "✓ %s is a valid sell target\n", target.Coord())
			printRecord(cmd, *res.Record)
			return nil
		},
	}
}

// NewRankCommand creates the rank command.
func NewRankCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Rank every valid sell target by token earned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.Scenario(cmd)
			if err != nil {
				return err
			}
			points := lattice.Generate(sc.AxisLimit)
			recs := lattice.RankTargets(points, sc.Entity.Coord(), sc.Move(), sc.AllowUnilateralIncrement, sc.AxisLimit)

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return opts.writeJSON(out, recs)
			}
			if len(recs) == 0 {
				yellow.Fprintf(out, "⚠️  no valid sell targets for entity %s\n", sc.Entity.Coord())
				return nil
			}
			cyan.Fprintf(out, "%d valid sell targets for entity %s\n", len(recs), sc.Entity.Coord())
			for _, r := range recs {
				printRecord(cmd, r)
			}
			return nil
		},
	}
}

func printRecord(cmd *cobra.Command, r lattice.TargetRecord) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %-9s earned %4g  profit %5g  released (%d,%d)  voter after (%d,%d)  Δrep %+.4f\n",
		r.Target.Coord(), r.TokenEarned, r.Profit,
		r.EntityReleased.DeltaX, r.EntityReleased.DeltaY,
		r.VoterHoldingsAfter.DeltaX, r.VoterHoldingsAfter.DeltaY,
		r.DeltaReputation)
}

// NewRandomCommand creates the random command.
func NewRandomCommand(opts *RootOptions) *cobra.Command {
	var (
		seed int64
		out  string
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Draw a random voter buy and entity position",
		Long: `Draw a random voter buy, then an entity position that covers it, and
print the resulting scenario as YAML. --out writes it to a file instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := opts.Scenario(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			from, to := lattice.RandomVoterMove(rng, sc.AxisLimit, nil)
			minDelta := lattice.Coord{X: to.X - from.X, Y: to.Y - from.Y}
			entity := lattice.RandomEntityPosition(rng, sc.AxisLimit, minDelta)

			sc.Voter.From = scenario.Point{X: from.X, Y: from.Y}
			sc.Voter.To = scenario.Point{X: to.X, Y: to.Y}
			sc.Entity = scenario.Point{X: entity.X, Y: entity.Y}

			if out != "" {
				if err := scenario.Save(out, sc); err != nil {
					return err
				}
				green.Fprintf(cmd.OutOrStdout(), "✓ scenario written to %s\n", out)
				return nil
			}
			if opts.Format == "json" {
				return opts.writeJSON(cmd.OutOrStdout(), sc)
			}
			data, err := scenario.Marshal(sc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (defaults to the current time)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the scenario to this file")
	return cmd
}
