package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/document"
	"github.com/spigell/resume-ranker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ranking HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", server.DefaultAddress, "address to listen on")
	serveCmd.Flags().String("upload-dir", server.DefaultUploadDir, "directory for uploaded resumes")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	viper.BindPFlag("server.upload-dir", serveCmd.Flags().Lookup("upload-dir"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()

	log.Info("starting the resume-ranker server", zap.String("version", version))

	analyzer, err := newAnalyzer(config, log)
	if err != nil {
		log.Fatal("preparing analyzer", zap.Error(err))
	}

	store, err := openStore(ctx, config, log)
	if err != nil {
		log.Fatal("opening storage", zap.Error(err))
	}
	defer store.Close()

	srv, err := server.New(*config.Server, server.Deps{
		Ranker:     analyzer,
		Store:      store,
		Extractor:  document.NewLoader(log),
		Classifier: newClassifier(config),
		Logger:     log,
	})
	if err != nil {
		log.Fatal("creating server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped", zap.Error(err))
		return
	}

	log.Info("server stopped")
}
