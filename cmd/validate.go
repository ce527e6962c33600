package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/printcurate-cli/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_manifest>",
	Short: "Validate a manifest and check every referenced print on disk",
	Long: `Checks that format and role counts sum to totalImages, ids are unique,
and every listed file exists under resized/<format>/ with the stated size
and pixel dimensions.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	m, baseDir, err := manifest.Read(args[0])
	if err != nil {
		return err
	}

	errs := manifest.Validate(m, baseDir)
	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d prints across %d formats and %d roles, all files present\n",
			m.TotalImages, len(m.Formats), len(m.Roles))
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}
