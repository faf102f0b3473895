package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"recipe-recommender/internal/core/artifact"
	"recipe-recommender/internal/core/recommend"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"
)

type options struct {
	modelPath      string
	vectorizerPath string
	datasetPath    string
	ingredients    string
	totalTime      int
	topK           int
	jsonOutput     bool
	logLevel       string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend recipes from the command line",
		Long: `Find the recipes most similar to a list of ingredients and a total time.

Example:
  recommend --ingredients "rice, brinjal" --time 60
  recommend --ingredients "chicken, curry" --time 30 --top-k 5 --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&opts.modelPath, "model", "", "Path or URL of the nearest-neighbor index (default from MODEL_PATH or model.json)")
	cmd.Flags().StringVar(&opts.vectorizerPath, "vectorizer", "", "Path or URL of the TF-IDF vectorizer (default from VECTORIZER_PATH or vectorizer.json)")
	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path or URL of the recipe dataset (default from DATASET_PATH or pre_processed.csv)")
	cmd.Flags().StringVarP(&opts.ingredients, "ingredients", "i", "rice, brinjal", "Comma-separated ingredients")
	cmd.Flags().IntVarP(&opts.totalTime, "time", "t", defaults.Recommend.DefaultTime, "Total time in minutes")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Maximum number of results (default from TOP_K or 10)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "error", "Log level")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := common.InitLogger(opts.logLevel, ""); err != nil {
		return err
	}
	defer common.Sync()

	if opts.modelPath != "" {
		cfg.Artifacts.ModelPath = opts.modelPath
	}
	if opts.vectorizerPath != "" {
		cfg.Artifacts.VectorizerPath = opts.vectorizerPath
	}
	if opts.datasetPath != "" {
		cfg.Artifacts.DatasetPath = opts.datasetPath
	}
	if opts.topK > 0 {
		cfg.Recommend.TopK = opts.topK
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	set, err := artifact.Load(ctx, cfg.Artifacts, artifact.NewDefaultSource(cfg.Artifacts.FetchTimeout, cfg.Artifacts.FetchRetries))
	if err != nil {
		return err
	}

	svc := recommend.NewService(set, cfg.Recommend, nil)
	if err := svc.Validate(opts.ingredients, opts.totalTime); err != nil {
		return err
	}

	res, err := svc.Query(ctx, opts.ingredients, opts.totalTime)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if opts.jsonOutput {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	return printText(cmd.OutOrStdout(), res, svc.TopK())
}

func printText(w io.Writer, res *recommend.Result, topK int) error {
	if _, err := fmt.Fprintf(w, "Top %d Recipes Similar to Your Input:\n", topK); err != nil {
		return err
	}
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "\n%d. %s\n", r.Rank, r.RecipeName)
		fmt.Fprintf(w, "   Ingredients: %s\n", r.Ingredients)
		fmt.Fprintf(w, "   Directions: %s\n", r.Directions)
		fmt.Fprintf(w, "   Total Time: %g minutes\n", r.TotalTime)
		fmt.Fprintf(w, "   Nutrition: %s\n", r.Nutrition)
		fmt.Fprintf(w, "   Serving: %s\n", r.Servings)
		if r.ImgSrc != "" {
			fmt.Fprintf(w, "   Image: %s\n", r.ImgSrc)
		}
	}
	return nil
}
