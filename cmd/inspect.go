package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/inspect"
	"github.com/AnyUserName/printcurate-cli/internal/policy"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
)

var (
	inspectRole  candidate.Role
	inspectImage candidate.Image
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image>",
	Short: "Run the filters and inspector on one file and print the verdict",
	Long: `Evaluates a single image exactly as build would, without rendering:
policy filters first, then decode, size and resolution checks, then the
print formats it qualifies for and its perceptual fingerprint.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectRole.Name, "role", "", "role/show name")
	f.StringVar(&inspectRole.Celebrity, "celebrity", "", "celebrity name")
	f.StringVar(&inspectRole.Character, "character", "", "character name")
	f.BoolVar(&inspectRole.VoiceRole, "voice-role", false, "treat the role as a voice role")
	f.StringVar(&inspectRole.Franchise, "franchise", "", "franchise name")
	f.StringVar(&inspectImage.SourceURL, "url", "", "source URL the image came from")
	f.StringVar(&inspectImage.Title, "title", "", "search result title")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	c := inspectImage
	c.Path = args[0]
	c.Role = inspectRole

	fmt.Printf("  File:     %s\n", c.Path)
	if v := policy.New(policy.WithLists(cfg.Lists()), policy.WithLogger(logger)).Evaluate(c); !v.OK() {
		fmt.Printf("  Verdict:  %s\n", v)
		return nil
	}

	in := inspect.New(inspect.Config{
		Selector:      cfg.Selector(),
		MinFileSize:   cfg.MinFileSize,
		MaxPixels:     cfg.MaxPixels,
		CheckMetadata: cfg.CheckMetadata,
		Logger:        logger,
	})
	res, v := in.Inspect(c)
	fmt.Printf("  Verdict:  %s\n", v)
	if v.OK() {
		fmt.Printf("  Details:  %s\n", res.Describe())
		for _, f := range res.Formats {
			b := res.Accepted
			w, h := f.Dimensions(printformat.OrientationOf(b.Width, b.Height))
			fmt.Printf("    → %-6s %dx%d\n", f.Name, w, h)
		}
	}
	return nil
}
