package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/report"
	"github.com/spf13/cobra"
)

const exitCommand = "exit"

// replCmd represents the repl command.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Identify languages interactively",
	Long: `Start an interactive session: every line read from standard input is
treated as a query and the closest reference languages are printed.
Type 'exit' or close the input to end the session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}

		top := cfg.Detection.TopK
		if cmd.Flags().Changed("top") {
			top, _ = cmd.Flags().GetInt("top")
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, "Initializing...")
		det, err := buildDetector(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Available languages: "+strings.Join(det.Languages(), ", "))

		return runREPL(cmd.InOrStdin(), out, det, top)
	},
}

// queryDetector is the part of the detector the session needs.
type queryDetector interface {
	Detect(text string) ([]detector.Match, error)
}

// runREPL reads queries line by line from in until "exit" or end of input.
func runREPL(in io.Reader, out io.Writer, det queryDetector, top int) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Query: (or type '"+exitCommand+"')")

		if !scanner.Scan() {
			return scanner.Err()
		}
		query := scanner.Text()
		if strings.TrimSpace(query) == exitCommand {
			return nil
		}

		matches, err := det.Detect(query)
		if errors.Is(err, detector.ErrEmptyQuery) {
			_, _ = fmt.Fprintln(out, "invalid query")
			continue
		}
		if err != nil {
			return err
		}

		text, err := report.Format(detector.Top(matches, top), report.FormatText)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().IntP("top", "n", 3, "number of matches to print per query (0 = all)")
}
