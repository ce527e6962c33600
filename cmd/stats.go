package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/printcurate-cli/internal/ledger"
	"github.com/AnyUserName/printcurate-cli/internal/manifest"
)

var statsLedger string

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a built print set",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsLedger, "ledger", "", "also summarize runs from this SQLite ledger")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, _, err := manifest.Read(args[0])
	if err != nil {
		return err
	}
	printStats(m)

	if statsLedger == "" {
		return nil
	}
	l, err := ledger.Open(statsLedger)
	if err != nil {
		return err
	}
	defer l.Close()
	return printLedger(cmd, l, m.RunID)
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Celebrity:        %s\n", m.Celebrity)
	fmt.Printf("  Generated:        %s\n", m.Generated)
	if m.RunID != "" {
		fmt.Printf("  Run:              %s\n", m.RunID)
	}
	fmt.Printf("  Total prints:     %d\n", m.TotalImages)
	fmt.Println()

	type agg struct {
		count int
		bytes int64
	}
	formatStats := map[string]agg{}
	orientations := map[string]int{}
	for _, e := range m.Images {
		a := formatStats[e.Format]
		a.count++
		a.bytes += e.FileSize
		formatStats[e.Format] = a
		orientations[e.Orientation]++
	}

	fmt.Println("  Format breakdown:")
	for _, f := range sortedKeys(m.Formats) {
		fmt.Printf("    %-8s %4d files  %s\n", f, m.Formats[f], formatBytes(formatStats[f].bytes))
	}
	fmt.Println()

	fmt.Println("  Role breakdown:")
	for _, r := range sortedKeys(m.Roles) {
		fmt.Printf("    %-32s %4d\n", truncName(r, 32), m.Roles[r])
	}
	fmt.Println()

	fmt.Println("  Orientation:")
	for _, o := range sortedKeys(orientations) {
		fmt.Printf("    %-10s %4d\n", o, orientations[o])
	}

	var warnings []string
	for _, r := range m.EmptyRoles() {
		warnings = append(warnings, fmt.Sprintf("role %q has no prints", r))
	}
	for f, a := range formatStats {
		if m.Formats[f] != a.count {
			warnings = append(warnings, fmt.Sprintf("format %q lists %d, images has %d", f, m.Formats[f], a.count))
		}
	}
	if len(warnings) > 0 {
		sort.Strings(warnings)
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}

func printLedger(cmd *cobra.Command, l *ledger.Ledger, runID string) error {
	ctx := cmd.Context()
	runs, err := l.Runs(ctx, 10)
	if err != nil {
		return err
	}
	fmt.Println("  Recent runs:")
	for _, r := range runs {
		finished := "unfinished"
		if !r.FinishedAt.IsZero() {
			finished = fmt.Sprintf("%d prints", r.TotalImages)
		}
		fmt.Printf("    %s  %-24s %s  %s\n", r.ID, truncName(r.Celebrity, 24), r.StartedAt.Format("2006-01-02 15:04"), finished)
	}
	fmt.Println()

	reasons, err := l.Reasons(ctx, runID)
	if err != nil {
		return err
	}
	scope := "all runs"
	if runID != "" {
		scope = "run " + runID
	}
	fmt.Printf("  Rejections (%s):\n", scope)
	for _, k := range sortedKeys(reasons) {
		fmt.Printf("    %-28s %4d\n", k, reasons[k])
	}
	fmt.Println()

	repeats, err := l.Repeats(ctx, 10)
	if err != nil {
		return err
	}
	if len(repeats) > 0 {
		fmt.Println("  Fetched again in later runs:")
		for _, r := range repeats {
			fmt.Printf("    %s  %2d runs  %s\n", r.Digest, r.Runs, truncName(r.File, 48))
		}
		fmt.Println()
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
