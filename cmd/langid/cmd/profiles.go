package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MeKo-Tech/langid/internal/config"
	"github.com/MeKo-Tech/langid/internal/corpus"
	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
	"github.com/spf13/cobra"
)

// profilesCmd groups the reference profile commands.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Build and inspect reference profiles",
}

var profilesBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build reference profiles from the corpus and save a snapshot",
	Long: `Read every file of the corpus directory, build one profile per language
label and save them as a new snapshot in the configured store.

Examples:
  langid profiles build --store yaml --store-path profiles.yaml
  langid profiles build --corpus-dir texts --store sqlite --store-path langid.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.Store.Driver == config.StoreNone {
			return errors.New("no store configured (use --store and --store-path)")
		}

		tok, err := tokenizer.New(cfg.ToTokenizerConfig())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		profiles, err := corpus.Load(ctx, cfg.Corpus, tok)
		if err != nil {
			return err
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
		}
		defer func() { _ = st.Close() }()

		if err := saveSnapshot(ctx, st, profiles, tok); err != nil {
			return err
		}

		labels := make([]string, len(profiles))
		for i, p := range profiles {
			labels[i] = p.Label()
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %d profiles (%s) to %s\n",
			len(profiles), strings.Join(labels, ", "), cfg.Store.Path)
		return err
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <label>",
	Short: "Print the ranked n-grams of a reference profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("invalid --limit value: %d (must be >= 0)", limit)
		}

		det, err := buildDetector(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		p, ok := det.Reference(args[0])
		if !ok {
			return fmt.Errorf("unknown language: %s (available: %s)", args[0], strings.Join(det.Languages(), ", "))
		}
		return printProfile(cmd.OutOrStdout(), p, limit)
	},
}

// printProfile writes the whole profile in its String form, or the first
// limit n-grams one per line.
func printProfile(w io.Writer, p *ngram.Profile, limit int) error {
	if limit == 0 {
		_, err := fmt.Fprintln(w, p.String())
		return err
	}

	ranked := p.Ranked()
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	if _, err := fmt.Fprintf(w, "%s: %d n-grams\n", p.Label(), p.Size()); err != nil {
		return err
	}
	for _, g := range ranked {
		if _, err := fmt.Fprintf(w, "%4d  %-9q %d\n", g.Rank(), g.Text(), g.Count()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesBuildCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesShowCmd.Flags().Int("limit", 20, "number of n-grams to print (0 = whole profile)")
}
