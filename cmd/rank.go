package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/document"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/server"
	"github.com/spigell/resume-ranker/internal/suitability"
)

const (
	PromptShow                = "Show ranked resumes"
	PromptExportReport        = "Export report"
	PromptDumpToFile          = "Dump results to file"
	PromptAppendToExcludeFile = "Append all resumes to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"

	defaultReportName = "resume_analysis_report"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank [flags] RESUME_OR_DIR...",
	Short: "Rank resumes against a job description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("job", "b", "", "file with the job description (text, html or pdf)")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu after ranking")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with resumes to exclude. Default is unset.")
	rankCmd.Flags().Int("top", 0, "keep only the best N resumes (0 keeps all)")
	rankCmd.Flags().Float64("minimum-score", 0, "drop resumes scoring below this percentage")
	rankCmd.Flags().StringP("output", "o", "", "write a report to this file (.csv or .xlsx)")
	rankCmd.Flags().Bool("no-store", false, "do not persist the results")

	rankCmd.MarkFlagRequired("job")

	viper.BindPFlag("filters.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("filters.top", rankCmd.Flags().Lookup("top"))
	viper.BindPFlag("filters.minimum-score", rankCmd.Flags().Lookup("minimum-score"))
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, config := setup()

	log.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	analyzer, err := newAnalyzer(config, log)
	if err != nil {
		log.Fatal("preparing analyzer", zap.Error(err))
	}

	loader := document.NewLoader(log)

	jobPath, _ := cmd.Flags().GetString("job")
	jobDescription, err := loader.ReadText(jobPath)
	if err != nil {
		log.Fatal("reading job description", zap.Error(err), zap.String("path", jobPath))
	}
	if strings.TrimSpace(jobDescription) == "" {
		log.Fatal("job description is empty", zap.String("path", jobPath))
	}

	candidates, err := loader.LoadPaths(args)
	if err != nil {
		log.Fatal("loading resumes", zap.Error(err))
	}

	if len(candidates) == 0 {
		log.Info("exiting", zap.String("reason", "no resumes found"))
		return
	}

	log.Info("ranking resumes", zap.Int("count", len(candidates)))

	batch, err := analyzer.Analyze(jobDescription, candidates)
	if err != nil {
		log.Fatal("analyzing resumes", zap.Error(err))
	}

	batchID := ""
	if noStore, _ := cmd.Flags().GetBool("no-store"); config.Storage.Enabled && !noStore {
		batchID = storeBatch(ctx, config, log, batch)
	}

	log = logger.WithBatchFields(log, batchID, "cli")

	noMatches := batch.AllZero()

	classifier := newClassifier(config)
	filtered, assessments, err := filtering.Run(ctx, filtersConfig(config), filtering.Deps{
		Logger:     log,
		Classifier: classifier,
	}, filtering.Default(), batch)
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}

	if noMatches {
		log.Info(server.NoMatchesMessage)
	}

	if filtered.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no resumes left after filters"))
		return
	}

	showResults(log, filtered, assessments)

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := exportReport(output, filtered); err != nil {
			log.Fatal("exporting report", zap.Error(err))
		}
		log.Info("report written", zap.String("filename", output))
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		return
	}

	for {
		items := []string{PromptShow, PromptExportReport, PromptDumpToFile}
		if config.Filters.ExcludeFile != "" && filtered.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}
		items = append(items, PromptExit)

		prompt := promptui.Select{
			Label: "What next?",
			Items: items,
		}

		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		log.Info("current list of resumes", zap.Int("count", filtered.Len()))

		if err := handleAction(action, log, config, filtered, assessments); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, batch *analysis.Batch, assessments map[string]*suitability.Assessment) error {
	switch action {
	case PromptShow:
		showResults(logger, batch, assessments)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptExportReport:
		return promptExport(logger, batch)
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(batch, assessments)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excludeFile := config.Filters.ExcludeFile
		excluded, err := filtering.LoadExcluded(excludeFile)
		if err != nil {
			return err
		}

		excluded.Append(filtering.ToExcluded(batch))

		if err = excluded.ToFile(excludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", batch.Len()))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func filtersConfig(config *Config) *filtering.Config {
	return &filtering.Config{
		MinimumScore: config.Filters.MinimumScore,
		Top:          config.Filters.Top,
		ExcludeFile:  config.Filters.ExcludeFile,
	}
}

func storeBatch(ctx context.Context, config *Config, log *zap.Logger, batch *analysis.Batch) string {
	store, err := openStore(ctx, config, log)
	if err != nil {
		log.Warn("skipping persistence", zap.Error(err))
		return ""
	}
	defer store.Close()

	meta, err := store.SaveBatch(ctx, batch)
	if err != nil {
		log.Warn("storing results failed", zap.Error(err))
		return ""
	}
	return meta.ID
}

func showResults(log *zap.Logger, batch *analysis.Batch, assessments map[string]*suitability.Assessment) {
	for i, doc := range batch.Documents {
		fields := []zap.Field{
			zap.Int("rank", i+1),
			zap.String(logger.FieldCandidate, doc.ID),
			zap.Float64("score", doc.Score),
			zap.Strings("skills", doc.Fields.Skills),
			zap.Strings("job_titles", doc.Fields.JobTitles),
			zap.Strings("education", doc.Fields.Education),
			zap.Strings("experience", doc.Fields.Experience),
			zap.Strings("languages", doc.Fields.Languages),
		}
		if assessment, ok := assessments[doc.ID]; ok {
			fields = append(fields, zap.String("verdict", assessment.String()))
		}
		log.Info("ranked resume", fields...)
	}
}

func promptExport(log *zap.Logger, batch *analysis.Batch) error {
	formatPrompt := promptui.Select{
		Label: "Choose a report format",
		Items: []string{string(report.FormatCSV), string(report.FormatXLSX), PromptBack},
	}

	_, selected, err := formatPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	format, err := report.ParseFormat(selected)
	if err != nil {
		return err
	}

	filename := defaultReportName + format.Extension()
	if err := exportReport(filename, batch); err != nil {
		return err
	}
	log.Info("report written", zap.String("filename", filename))
	return nil
}

// exportReport picks the format from the file extension.
func exportReport(filename string, batch *analysis.Batch) error {
	format := report.FormatCSV
	if strings.HasSuffix(strings.ToLower(filename), report.FormatXLSX.Extension()) {
		format = report.FormatXLSX
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := report.Write(f, format, report.RowsFromBatch(batch)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dumpToTmpFile(batch *analysis.Batch, assessments map[string]*suitability.Assessment) (string, error) {
	f, err := os.CreateTemp("", app+"-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		*analysis.Batch
		Assessments map[string]*suitability.Assessment `json:"assessments"`
	}{batch, assessments}); err != nil {
		return "", err
	}

	return f.Name(), nil
}
