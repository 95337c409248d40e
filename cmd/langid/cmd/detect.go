package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/report"
	"github.com/spf13/cobra"
)

// detectCmd represents the detect command.
var detectCmd = &cobra.Command{
	Use:   "detect [text...]",
	Short: "Identify the language of a text",
	Long: `Identify the language of a text given as arguments, read from a file or
from standard input, and print the closest reference languages.

Examples:
  langid detect "Die Würde des Menschen ist unantastbar"
  langid detect --file article.txt --top 5
  echo "hello world" | langid detect --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		top := cfg.Detection.TopK
		if cmd.Flags().Changed("top") {
			top, _ = cmd.Flags().GetInt("top")
		}
		if top < 0 {
			return fmt.Errorf("invalid --top value: %d (must be >= 0)", top)
		}

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if !report.ValidFormat(format) {
			return fmt.Errorf("unsupported format: %s (must be one of: %s)", format, strings.Join(report.Formats, ", "))
		}

		file, _ := cmd.Flags().GetString("file")
		if file != "" && len(args) > 0 {
			return errors.New("pass either text arguments or --file, not both")
		}

		det, err := buildDetector(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		matches, err := detectInput(det, args, file, cmd.InOrStdin())
		if err != nil {
			if errors.Is(err, detector.ErrEmptyQuery) {
				return fmt.Errorf("invalid query: %w", err)
			}
			return err
		}

		out, err := report.Format(detector.Top(matches, top), format)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	},
}

// detectInput ranks the references for the text in args, the named file or
// stdin, in that order of preference.
func detectInput(det *detector.Detector, args []string, file string, stdin io.Reader) ([]detector.Match, error) {
	switch {
	case len(args) > 0:
		return det.Detect(strings.Join(args, " "))
	case file != "":
		f, err := os.Open(file) //nolint:gosec // G304: user supplied input file
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		return det.DetectReader(f)
	default:
		return det.DetectReader(stdin)
	}
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringP("file", "f", "", "read the query text from a file")
	detectCmd.Flags().IntP("top", "n", 3, "number of matches to print (0 = all)")
	detectCmd.Flags().String("format", "text", "output format (text, json, csv)")
}
