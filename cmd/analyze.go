package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greenbelt-labs/ejatlas/internal/loader"
	"github.com/greenbelt-labs/ejatlas/internal/model"
	"github.com/greenbelt-labs/ejatlas/internal/pipeline"
	"github.com/greenbelt-labs/ejatlas/internal/present"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the grade overlay analysis for one jurisdiction and year",
	Long:  "Loads the indicator shapefile, HOLC grade GeoJSON, and occurrence CSV, reprojects everything to a common planar CRS, joins by spatial overlap, and prints per-grade summaries.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		applyAnalyzeFlags(cmd)
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		year, _ := cmd.Flags().GetInt("year")
		state, _ := cmd.Flags().GetString("state")
		county, _ := cmd.Flags().GetString("county")
		outDir, _ := cmd.Flags().GetString("out-dir")
		save, _ := cmd.Flags().GetBool("save")

		fields := cfg.Analysis.Fields
		if len(fields) == 0 {
			fields = cfg.Data.IndicatorFields
		}

		log := zap.L().With(zap.String("component", "analyze"))
		log.Info("loading datasets",
			zap.String("areas", cfg.Data.AreasPath),
			zap.String("zones", cfg.Data.ZonesPath),
			zap.String("observations", cfg.Data.ObservationsPath),
		)

		areas, err := loader.LoadAreas(cfg.Data.AreasPath, loader.AreaFileConfig{
			CRS:             cfg.Data.AreasCRS,
			StateField:      cfg.Data.StateField,
			CountyField:     cfg.Data.CountyField,
			IndicatorFields: cfg.Data.IndicatorFields,
		})
		if err != nil {
			return err
		}
		zones, err := loader.LoadZones(cfg.Data.ZonesPath, loader.ZoneFileConfig{
			GradeField: cfg.Data.GradeField,
			NameField:  cfg.Data.NameField,
		})
		if err != nil {
			return err
		}
		obsCfg := loader.ObservationFileConfig{Delimiter: obsDelimiter(cfg.Data.ObsDelimiter)}
		obs, err := loader.LoadObservations(cfg.Data.ObservationsPath, obsCfg)
		if err != nil {
			return err
		}

		params := pipeline.Params{
			TargetCRS: cfg.Analysis.TargetCRS,
			State:     state,
			County:    county,
			Year:      year,
			Fields:    fields,
			Workers:   cfg.Analysis.Workers,
		}
		res, err := pipeline.Run(ctx, areas, zones, obs, params)
		if err != nil {
			return err
		}

		present.WriteSummaryTable(os.Stdout, "Indicators by grade", fields, res.AreaSummary)
		fmt.Println()
		present.WriteSummaryTable(os.Stdout, "Observations by grade", nil, res.ObsSummary)

		if outDir != "" {
			if err := exportResults(outDir, fields, params, res); err != nil {
				return err
			}
			log.Info("exported results", zap.String("dir", outDir))
		}

		if save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run := &model.Run{
				State:     state,
				County:    county,
				Year:      year,
				AreaCount: res.AreaJoined,
				ObsCount:  res.ObsJoined,
			}
			if err := st.SaveRun(ctx, run, res.AreaSummary, res.ObsSummary); err != nil {
				return eris.Wrap(err, "analyze: save run")
			}
			fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
		}

		return nil
	},
}

// applyAnalyzeFlags folds explicit path flags over the loaded config so a
// one-off file can be analyzed without editing config.yaml.
func applyAnalyzeFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("areas"); v != "" {
		cfg.Data.AreasPath = v
	}
	if v, _ := cmd.Flags().GetString("zones"); v != "" {
		cfg.Data.ZonesPath = v
	}
	if v, _ := cmd.Flags().GetString("observations"); v != "" {
		cfg.Data.ObservationsPath = v
	}
	if v, _ := cmd.Flags().GetStringSlice("fields"); len(v) > 0 {
		cfg.Data.IndicatorFields = v
		cfg.Analysis.Fields = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Analysis.Workers = v
	}
}

// exportResults writes the workbook, charts, and manifest for one run.
func exportResults(outDir string, fields []string, params pipeline.Params, res *pipeline.Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return eris.Wrapf(err, "analyze: create out dir %s", outDir)
	}

	if err := present.WriteWorkbook(filepath.Join(outDir, "summaries.xlsx"), fields, res.AreaSummary, res.ObsSummary); err != nil {
		return err
	}

	if len(res.ObsSummary) > 0 {
		if err := writeChart(filepath.Join(outDir, "observations.png"), func(f *os.File) error {
			return present.RenderCountChart(f, "Observations by grade", res.ObsSummary)
		}); err != nil {
			return err
		}
	}
	for _, field := range fields {
		if !hasValidMean(res.AreaSummary, field) {
			continue
		}
		name := fmt.Sprintf("mean_%s.png", field)
		field := field
		if err := writeChart(filepath.Join(outDir, name), func(f *os.File) error {
			return present.RenderMeanChart(f, field, res.AreaSummary)
		}); err != nil {
			return err
		}
	}

	var m present.Manifest
	m.CreatedAt = time.Now().UTC()
	m.Inputs.Areas = cfg.Data.AreasPath
	m.Inputs.Zones = cfg.Data.ZonesPath
	m.Inputs.Observations = cfg.Data.ObservationsPath
	m.Parameters.State = params.State
	m.Parameters.County = params.County
	m.Parameters.Year = params.Year
	m.Parameters.Fields = fields
	m.Parameters.TargetCRS = params.TargetCRS
	m.Counts.AreasFiltered = res.AreasFiltered
	m.Counts.ObservationsFiltered = res.ObservationsFiltered
	m.Counts.AreaJoined = res.AreaJoined
	m.Counts.ObsJoined = res.ObsJoined

	mf, err := os.Create(filepath.Join(outDir, "manifest.yaml"))
	if err != nil {
		return eris.Wrap(err, "analyze: create manifest")
	}
	defer mf.Close() //nolint:errcheck
	return present.WriteManifest(mf, m)
}

func writeChart(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "analyze: create chart %s", path)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "analyze: close chart %s", path)
}

// obsDelimiter returns the first rune of the configured delimiter, not its
// first byte, so a multi-byte delimiter survives intact. Empty input defers
// to the loader's default.
func obsDelimiter(s string) rune {
	if s == "" {
		return 0
	}
	return []rune(s)[0]
}

// hasValidMean reports whether any grade has a usable mean for field, so
// chart rendering is skipped instead of failing on all-missing columns.
func hasValidMean(groups []model.GroupSummary, field string) bool {
	for _, g := range groups {
		if v, ok := g.Means[field]; ok && v.Valid {
			return true
		}
	}
	return false
}

func init() {
	analyzeCmd.Flags().String("state", "", "state to filter indicator areas to (empty matches all)")
	analyzeCmd.Flags().String("county", "", "county to filter indicator areas to (empty matches all)")
	analyzeCmd.Flags().Int("year", 0, "observation year under study")
	analyzeCmd.Flags().StringSlice("fields", nil, "indicator fields to average per grade (overrides config)")
	analyzeCmd.Flags().Int("workers", 0, "overlay parallelism (overrides config)")
	analyzeCmd.Flags().String("areas", "", "indicator shapefile path (overrides config)")
	analyzeCmd.Flags().String("zones", "", "HOLC grade GeoJSON path (overrides config)")
	analyzeCmd.Flags().String("observations", "", "occurrence CSV path (overrides config)")
	analyzeCmd.Flags().String("out-dir", "", "directory to write xlsx, charts, and manifest to")
	analyzeCmd.Flags().Bool("save", false, "persist the run and its summaries to the store")
	_ = analyzeCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(analyzeCmd)
}
