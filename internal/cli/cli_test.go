package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/stake-lattice/api/internal/scenario"
	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord("52, 39")
	require.NoError(t, err)
	assert.Equal(t, lattice.Coord{X: 52, Y: 39}, c)

	for _, bad := range []string{"52", "a,3", "3,b", ""} {
		_, err := ParseCoord(bad)
		assert.Error(t, err, bad)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "generate", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, "generate", "-L", "12", "--format", "json")
	require.NoError(t, err)

	var points []lattice.Point
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	assert.Len(t, points, 8)
	assert.Equal(t, lattice.Coord{X: 3, Y: 4}, points[0].Coord())
}

func TestGenerateText(t *testing.T) {
	out, err := run(t, "generate", "-L", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2 points within axis limit 5")
	assert.Contains(t, out, "(3,4)")
	assert.Contains(t, out, "(4,3)")
}

func TestMove(t *testing.T) {
	out, err := run(t, "move", "--format", "json")
	require.NoError(t, err)

	var move lattice.VoterMove
	require.NoError(t, json.Unmarshal([]byte(out), &move))
	assert.Equal(t, 26, move.DeltaX)
	assert.Equal(t, 9, move.DeltaY)
	assert.InDelta(t, 25, move.DeltaCost, 1e-9)
}

func TestMoveTextOffLattice(t *testing.T) {
	out, err := run(t, "move", "--voter-from", "1,1", "--voter-to", "3,4")
	require.NoError(t, err)
	// 5 - sqrt(2) is printed without rounding.
	assert.Contains(t, out, "delta cost   3.5857")
	assert.Contains(t, out, "token earned -3.5857")
}

func TestMoveTextOnLattice(t *testing.T) {
	out, err := run(t, "move")
	require.NoError(t, err)
	assert.Contains(t, out, "delta cost   25\n")
	assert.Contains(t, out, "token earned -25\n")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "48,36", "--format", "json")
	require.NoError(t, err)

	var res CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Valid)
	require.NotNil(t, res.Record)
	assert.InDelta(t, 5, res.Record.TokenEarned, 1e-9)

	out, err = run(t, "check", "30,40", "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Valid)
	assert.Equal(t, "direction", res.Clause)

	out, err = run(t, "check", "30,40", "-u")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ (30,40) is a valid sell target")
}

func TestCheckRejectsBadArg(t *testing.T) {
	_, err := run(t, "check", "thirty")
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	out, err := run(t, "rank", "--format", "json")
	require.NoError(t, err)

	var recs []lattice.TargetRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 4)
	assert.Equal(t, lattice.Coord{X: 27, Y: 36}, recs[0].Target.Coord())

	out, err = run(t, "rank", "-u")
	require.NoError(t, err)
	assert.Contains(t, out, "10 valid sell targets for entity (52,39)")
}

func TestRankNoTargets(t *testing.T) {
	out, err := run(t, "rank", "--entity", "3,4", "--voter-from", "3,4", "--voter-to", "6,8")
	require.NoError(t, err)
	assert.Contains(t, out, "no valid sell targets")
}

func TestScenarioFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	sc := scenario.Default()
	sc.AllowUnilateralIncrement = true
	require.NoError(t, scenario.Save(path, sc))

	out, err := run(t, "rank", "-s", path, "--format", "json")
	require.NoError(t, err)
	var recs []lattice.TargetRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 10)

	// An explicit flag wins over the file.
	out, err = run(t, "rank", "-s", path, "--unilateral=false", "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 4)
}

func TestScenarioErrors(t *testing.T) {
	_, err := run(t, "rank", "-s", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "rank", "--entity", "0,5")
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)

	_, err = run(t, "rank", "--voter-to", "x")
	assert.Error(t, err)
}

func TestRandomWritesScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random.yaml")
	out, err := run(t, "random", "--seed", "42", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sc, err := scenario.Parse(data)
	require.NoError(t, err)

	from, to := sc.Voter.From, sc.Voter.To
	assert.GreaterOrEqual(t, to.X, from.X)
	assert.GreaterOrEqual(t, to.Y, from.Y)
	assert.GreaterOrEqual(t, sc.Entity.X, to.X-from.X)
	assert.GreaterOrEqual(t, sc.Entity.Y, to.Y-from.Y)
}

func TestRandomIsReproducible(t *testing.T) {
	a, err := run(t, "random", "--seed", "7", "--format", "json")
	require.NoError(t, err)
	b, err := run(t, "random", "--seed", "7", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
