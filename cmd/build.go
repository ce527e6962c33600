package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/inspect"
	"github.com/AnyUserName/printcurate-cli/internal/ledger"
	"github.com/AnyUserName/printcurate-cli/internal/manifest"
	"github.com/AnyUserName/printcurate-cli/internal/pipeline"
	"github.com/AnyUserName/printcurate-cli/internal/policy"
	"github.com/AnyUserName/printcurate-cli/internal/profile"
	"github.com/AnyUserName/printcurate-cli/internal/render"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

var (
	buildOutDir     string
	buildDir        string
	buildRole       candidate.Role
	buildCelebrity  string
	buildWorkers    int
	buildThreshold  float64
	buildMaxPerRole int
	buildQuality    int
	buildProfile    string
	buildLedger     string
	buildNoMetadata bool
)

var buildCmd = &cobra.Command{
	Use:   "build [candidates.yaml]",
	Short: "Filter, dedupe and render candidates into print formats + manifest",
	Long: `Reads a candidates file (YAML or JSON) listing roles and their downloaded
images, or scans a single directory with --dir for one role. Every candidate
is checked for watermarks, fan content, voice-role mismatches, resolution and
file size, near-duplicates within its role are dropped, and each survivor is
rendered once per qualifying print format.

Output layout: <out>/resized/<format>/<NN> - <Celebrity> - <Show> - <format>.jpg
plus <out>/manifest.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOutDir, "out", "o", "", "output directory (default from config)")
	f.StringVar(&buildDir, "dir", "", "scan this directory instead of reading a candidates file")
	f.StringVar(&buildRole.Name, "role", "", "role/show name for --dir")
	f.StringVar(&buildRole.Celebrity, "celebrity", "", "celebrity name for --dir")
	f.StringVar(&buildRole.Character, "character", "", "character name for --dir")
	f.BoolVar(&buildRole.VoiceRole, "voice-role", false, "the --dir role was a voice role")
	f.StringVar(&buildRole.Franchise, "franchise", "", "franchise name for --dir")
	f.StringVar(&buildCelebrity, "manifest-celebrity", "", "override the manifest's celebrity field")
	f.IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = config)")
	f.Float64Var(&buildThreshold, "threshold", 0, "near-duplicate similarity threshold (0 = config)")
	f.IntVar(&buildMaxPerRole, "max-per-role", 0, "keep at most N images per role (0 = config)")
	f.StringVarP(&buildProfile, "profile", "p", "", "print profile: "+strings.Join(profile.Names(), ", "))
	f.IntVarP(&buildQuality, "quality", "q", 0, "JPEG quality 1-100 (0 = profile)")
	f.StringVar(&buildLedger, "ledger", "", "record every verdict in this SQLite database")
	f.BoolVar(&buildNoMetadata, "no-metadata", false, "skip the embedded stock-credit check")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	applyBuildFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	batches, err := loadBatches(args)
	if err != nil {
		return err
	}

	absOutput, err := filepath.Abs(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	runID := ledger.NewRunID()
	var led *ledger.Ledger
	if cfg.Ledger != "" {
		led, err = ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer led.Close()
		if err := led.BeginRun(cmd.Context(), runID, firstCelebrity(batches)); err != nil {
			return err
		}
	}

	sel := cfg.Selector()
	p := pipeline.New(pipeline.Config{
		OutputDir:        absOutput,
		Celebrity:        buildCelebrity,
		Workers:          cfg.Workers,
		DedupThreshold:   cfg.DedupThreshold,
		MaxImagesPerRole: cfg.MaxImagesPerRole,
		Selector:         sel,
		Policy:           policy.New(policy.WithLists(cfg.Lists()), policy.WithLogger(logger)),
		Inspector: inspect.New(inspect.Config{
			Selector:      sel,
			MinFileSize:   cfg.MinFileSize,
			MaxPixels:     cfg.MaxPixels,
			CheckMetadata: cfg.CheckMetadata,
			Logger:        logger,
		}),
		Renderer: render.New(absOutput, render.WithQuality(cfg.JPEGQuality()), render.WithLogger(logger)),
		Recorder: recorderOf(led),
		RunID:    runID,
		Logger:   logger,
	})

	report, err := p.Run(cmd.Context(), batches)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(report.Manifest, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if led != nil {
		if err := led.FinishRun(cmd.Context(), runID, report.Manifest.TotalImages); err != nil {
			logger.Warn("ledger finish failed", zap.Error(err))
		}
	}

	printBuildReport(report, manifestPath, time.Since(start))

	if failed := report.Failed(); len(failed) > 0 {
		errs := make([]error, 0, len(failed))
		for _, rr := range failed {
			errs = append(errs, rr.Err)
		}
		return fmt.Errorf("%d role(s) failed: %w", len(failed), errors.Join(errs...))
	}
	return nil
}

// applyBuildFlags lets explicit flags win over the loaded config.
func applyBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("out") {
		cfg.Output = buildOutDir
	}
	if f.Changed("workers") && buildWorkers > 0 {
		cfg.Workers = buildWorkers
	}
	if f.Changed("threshold") && buildThreshold > 0 {
		cfg.DedupThreshold = buildThreshold
	}
	if f.Changed("max-per-role") {
		cfg.MaxImagesPerRole = buildMaxPerRole
	}
	if f.Changed("profile") {
		cfg.Profile = buildProfile
	}
	if f.Changed("quality") && buildQuality > 0 {
		cfg.Quality = buildQuality
	}
	if f.Changed("ledger") {
		cfg.Ledger = buildLedger
	}
	if buildNoMetadata {
		cfg.CheckMetadata = false
	}
}

func loadBatches(args []string) ([]candidate.Batch, error) {
	switch {
	case buildDir != "" && len(args) > 0:
		return nil, errors.New("give either a candidates file or --dir, not both")
	case buildDir != "":
		if buildRole.Name == "" {
			return nil, errors.New("--dir requires --role")
		}
		b, err := candidate.ScanDir(buildDir, buildRole)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if len(b.Candidates) == 0 {
			return nil, fmt.Errorf("no images found in %s", buildDir)
		}
		logger.Debug("scanned directory", zap.String("dir", buildDir), zap.Int("candidates", len(b.Candidates)))
		return []candidate.Batch{b}, nil
	case len(args) == 1:
		return candidate.Load(args[0])
	default:
		return nil, errors.New("a candidates file or --dir is required")
	}
}

func printBuildReport(r *pipeline.Report, manifestPath string, elapsed time.Duration) {
	m := r.Manifest
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║            printcurate build complete            ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	var candidates, accepted int
	var outBytes int64
	for _, rr := range r.Roles {
		candidates += len(rr.Outcomes)
		accepted += rr.Accepted()
	}
	for _, e := range m.Images {
		outBytes += e.FileSize
	}

	fmt.Printf("  Run:         %s\n", r.RunID)
	fmt.Printf("  Candidates:  %d\n", candidates)
	fmt.Printf("  Accepted:    %d\n", accepted)
	fmt.Printf("  Prints:      %d (%s)\n", m.TotalImages, formatBytes(outBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	fmt.Println("  Per role:")
	for _, rr := range r.Roles {
		status := ""
		if rr.Err != nil {
			status = "  FAILED: " + rr.Err.Error()
		}
		fmt.Printf("    %-32s %3d / %3d accepted, %3d prints%s\n",
			truncName(rr.Role.Name, 32), rr.Accepted(), len(rr.Outcomes), len(rr.Outputs), status)
	}
	fmt.Println()

	if reasons := r.ReasonCounts(); len(reasons) > 0 {
		keys := make([]string, 0, len(reasons))
		for k := range reasons {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		fmt.Println("  Rejections:")
		for _, k := range keys {
			fmt.Printf("    %-28s %4d\n", k, reasons[verdict.Reason(k)])
		}
		fmt.Println()
	}

	if empty := r.EmptyRoles(); len(empty) > 0 {
		fmt.Printf("  ⚠ No usable images for: %v\n\n", empty)
	}
	fmt.Printf("  Manifest:    %s\n\n", manifestPath)
}

// recorderOf returns a nil interface for a nil ledger.
func recorderOf(l *ledger.Ledger) pipeline.Recorder {
	if l == nil {
		return nil
	}
	return l
}

func firstCelebrity(batches []candidate.Batch) string {
	if buildCelebrity != "" {
		return buildCelebrity
	}
	for _, b := range batches {
		if b.Role.Celebrity != "" {
			return b.Role.Celebrity
		}
	}
	return ""
}

func truncName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
