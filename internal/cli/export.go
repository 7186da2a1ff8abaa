package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"empleoformal/internal/config"
	"empleoformal/internal/dataset"
	"empleoformal/internal/fetchers"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
	"empleoformal/internal/reports"
	"empleoformal/internal/storage"
)

// exportOptions holds options for the export command
type exportOptions struct {
	formats []string
	views   []string
	target  string
	source  string
	output  string
}

func (a *App) newExportCmd() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export Empleo Formal dashboard charts",
		Long: `export renders the dashboard views of the formal employment dataset as
standalone HTML pages, PNG images or JSON chart descriptions and stores them
under <timestamp>/<view>.<format>, locally or in a GCS bucket, together with an
index.html linking every file.

Configuration is read from the environment (.env supported), as for the server.

Examples:
  # Every view in every format to EXPORT_DIR
  export

  # PNG of the map to the GCS_BUCKET bucket
  export --view mapa --format png --target gcs

  # Different data file and output directory
  export --source datos.xlsx --output ./out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.export(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", []string{"html", "png", "json"}, "Export formats: html, png, json")
	cmd.Flags().StringSliceVarP(&opts.views, "view", "v", nil, "Views to export: barras, box, mapa (default: all)")
	cmd.Flags().StringVarP(&opts.target, "target", "t", string(storage.DeploymentLocal), "Storage target: local or gcs")
	cmd.Flags().StringVar(&opts.source, "source", "", "Data source (default: DATA_SOURCE)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Local output directory (default: EXPORT_DIR)")

	return cmd
}

func parseViews(values []string) ([]models.ViewSelection, error) {
	if len(values) == 0 {
		return models.Views, nil
	}
	views := make([]models.ViewSelection, 0, len(values))
	for _, value := range values {
		view := models.ParseView(value)
		if !view.Valid() {
			return nil, fmt.Errorf("unknown view %q", value)
		}
		views = append(views, view)
	}
	return views, nil
}

// export loads the dataset, renders the requested views and stores the files
func (a *App) export(cmd *cobra.Command, opts *exportOptions) error {
	ctx := cmd.Context()

	formats, err := reports.ParseFormats(opts.formats)
	if err != nil {
		return err
	}
	views, err := parseViews(opts.views)
	if err != nil {
		return err
	}
	mode, err := storage.ParseDeploymentMode(opts.target)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.ResolvedLogFormat()); err != nil {
		return err
	}
	if opts.source != "" {
		cfg.DataSource = opts.source
	}
	if opts.output != "" {
		cfg.ExportDir = opts.output
	}

	loader := dataset.NewLoader(fetchers.NewDataFetcher(), cfg.Delimiter())
	ds, err := loader.Load(ctx, cfg.DataSource)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	files, err := reports.NewFileGenerator(cfg.Title).GenerateAllFiles(ds, views, formats, time.Now())
	if err != nil {
		return err
	}

	client, err := storage.NewStorageClient(ctx, mode, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	stored, err := reports.NewStorageOrchestrator(client).StoreAllFiles(ctx, files)
	if err != nil {
		return err
	}

	for _, p := range stored {
		fmt.Fprintln(a.stdout, p)
	}
	return nil
}
