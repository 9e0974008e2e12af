package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the latest stored ranking as CSV or XLSX",
	Run: func(cmd *cobra.Command, _ []string) {
		exportLatest(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("format", "f", string(report.FormatCSV), "report format: csv or xlsx")
	reportCmd.Flags().StringP("output", "o", "", "output file (default is stdout for csv)")
}

func exportLatest(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	formatName, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		log.Fatal("parsing report format", zap.Error(err))
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" && format == report.FormatXLSX {
		output = defaultReportName + format.Extension()
	}

	store, err := openStore(ctx, config, log)
	if err != nil {
		log.Fatal("opening storage", zap.Error(err))
	}
	defer store.Close()

	meta, rows, err := store.LatestResults(ctx)
	if errors.Is(err, storage.ErrNoResults) {
		log.Info("exiting", zap.String("reason", "no analysis data available to export"))
		return
	}
	if err != nil {
		log.Fatal("loading latest results", zap.Error(err))
	}

	log = logger.WithBatchFields(log, meta.ID, "storage")

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			log.Fatal("creating report file", zap.Error(err))
		}
		defer f.Close()
		w = f
	}

	if err := report.Write(w, format, rows); err != nil {
		log.Fatal("writing report", zap.Error(err))
	}

	if output != "" {
		log.Info("report written",
			zap.String("filename", output),
			zap.Int("rows", len(rows)),
			zap.Time("analyzed_at", meta.AnalyzedAt),
		)
	}
}
