package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/export"
	"github.com/spf13/cobra"
)

var inPath string

var errVerifyFailed = errors.New("verification failed")

var verifyCmd = &cobra.Command{
	Use:   "verify --in FILE",
	Short: "Check an exported CSV against a fresh generation",
	Long: `Re-generates the series selected by the flags and checks the CSV export for
contiguous years, non-negative catch, and values bit-identical to the new run.
Pass the same flags used to produce the file.

Values depend on the generation range, which spans SERIES_START_YEAR to
SERIES_END_YEAR (default: the current year) as well as --start/--end. An export
made in an earlier year only verifies with SERIES_END_YEAR set to the
generation range end printed by that run.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&inPath, "in", "i", "", "CSV export to verify")
	_ = verifyCmd.MarkFlagRequired("in")
}

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func runVerify(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	exported, err := export.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	e, v, err := buildView(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	passed := report(out, verify(exported, v, e.catalog))
	fmt.Fprintf(out, "Generation range: %s\n", v.GenerationRange)
	if !passed {
		fmt.Fprintln(out, "Exports from another year need SERIES_END_YEAR pinned to the range end they were generated with.")
		return errVerifyFailed
	}
	return nil
}

func verify(exported []domain.Series, v dashboard.View, c domain.Catalog) []*phase {
	return []*phase{
		checkContiguous(exported, v.Query.Range),
		checkNonNegative(exported, c),
		checkReproducible(exported, v.Series),
	}
}

// report prints a PASS/FAIL line per phase followed by the details of each
// failure. It returns whether every phase passed.
func report(w io.Writer, phases []*phase) bool {
	fmt.Fprintln(w, "=== Series Export Verification ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
	} else {
		fmt.Fprintln(w, "\nVerification FAILED.")
	}
	return allPassed
}

// ── Phases ──

// checkContiguous verifies every series covers r one year at a time.
func checkContiguous(series []domain.Series, r domain.YearRange) *phase {
	p := &phase{name: "Contiguous years"}
	for _, s := range series {
		years := s.Years()
		if len(years) != r.Years() {
			p.errorf("%s: %d years, want %d for %s", s.Label, len(years), r.Years(), r)
		}
		for i, y := range years {
			want := r.Start + i
			if y != want {
				p.errorf("%s: row %d has year %d, want %d", s.Label, i+1, y, want)
				break
			}
		}
	}
	return p
}

// checkNonNegative verifies clamped kinds never go below zero.
func checkNonNegative(series []domain.Series, c domain.Catalog) *phase {
	p := &phase{name: "Non-negative catch"}
	for _, s := range series {
		spec, ok := c.Spec(s.Label)
		if !ok {
			p.errorf("%s: label not in catalog", s.Label)
			continue
		}
		if !spec.Kind.Clamped() {
			continue
		}
		for _, pt := range s.Points {
			if pt.Value < 0 || math.IsNaN(pt.Value) {
				p.errorf("%s: %d has value %v", s.Label, pt.Year, pt.Value)
			}
		}
	}
	return p
}

// checkReproducible verifies the export matches a fresh generation bit for bit.
func checkReproducible(exported, fresh []domain.Series) *phase {
	p := &phase{name: "Reproducible values"}

	gotLabels := labelsOf(exported)
	wantLabels := labelsOf(fresh)
	if !slices.Equal(gotLabels, wantLabels) {
		p.errorf("labels %v, want %v", gotLabels, wantLabels)
	}

	byLabel := make(map[string]domain.Series, len(fresh))
	for _, s := range fresh {
		byLabel[s.Label] = s
	}
	for _, s := range exported {
		want, ok := byLabel[s.Label]
		if !ok {
			continue
		}
		if s.Unit != want.Unit {
			p.errorf("%s: unit %q, want %q", s.Label, s.Unit, want.Unit)
		}
		for _, pt := range s.Points {
			v, ok := want.At(pt.Year)
			if !ok {
				p.errorf("%s: year %d not generated", s.Label, pt.Year)
				continue
			}
			if math.Float64bits(v) != math.Float64bits(pt.Value) {
				p.errorf("%s: %d is %v, generated %v", s.Label, pt.Year, pt.Value, v)
			}
		}
	}
	return p
}

func labelsOf(series []domain.Series) []string {
	out := make([]string, len(series))
	for i, s := range series {
		out[i] = s.Label
	}
	return out
}
