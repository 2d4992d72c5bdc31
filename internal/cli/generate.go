package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
)

type generateOptions struct {
	count    int
	features int
	seed     uint64
	output   string
	yaml     bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a stories file",
		Long: `Generate random user stories with task counts drawn from the
configured generator ranges and write them as a stories file that
"devcyclesim run --stories-file" accepts.

The output format follows the file extension (.yaml/.yml or JSON).
Without --output the stories are printed to stdout.

Examples:
  devcyclesim generate -n 20 -o stories.json
  devcyclesim generate -n 10 --features 3 --seed 42 -o features.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&opts.count, "count", "n", 10, "Number of stories (per feature with --features)")
	fs.IntVar(&opts.features, "features", 0, "Group stories into N features")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed (default from config)")
	fs.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	fs.BoolVar(&opts.yaml, "yaml", false, "Print YAML instead of JSON when writing to stdout")
	return cmd
}

func (o *generateOptions) run(cmd *cobra.Command) error {
	if o.count <= 0 {
		return errors.New("--count must be positive")
	}
	cfg, err := loadConfig(config.Flags{Seed: o.seed, SeedSet: cmd.Flags().Changed("seed")})
	if err != nil {
		return err
	}
	gen, err := cfg.NewGenerator()
	if err != nil {
		return err
	}

	var stories []*domain.UserStory
	if o.features > 0 {
		stories, err = gen.FeatureStories(o.features, o.count)
	} else {
		stories, err = gen.Stories(o.count)
	}
	if err != nil {
		return err
	}

	if o.output == "" {
		return scenario.WriteStories(cmd.OutOrStdout(), stories, o.yaml)
	}
	if err := scenario.SaveStories(o.output, stories); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d stories in %s\n", len(stories), o.output)
	return nil
}
