package cmd

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ranker/internal/server"
	"github.com/spigell/resume-ranker/internal/storage"
	"github.com/spigell/resume-ranker/internal/suitability"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const (
	app       = "resume-ranker"
	envPrefix = "RESUME_RANKER"
)

type Config struct {
	Vocabulary *vocabulary.Config `mapstructure:"vocabulary"`
	Filters    *FiltersConfig     `mapstructure:"filters"`
	Threshold  float64            `mapstructure:"threshold"`
	Storage    *StorageConfig     `mapstructure:"storage"`
	Server     *server.Config     `mapstructure:"server"`
}

type FiltersConfig struct {
	MinimumScore float64 `mapstructure:"minimum-score"`
	Top          int     `mapstructure:"top"`
	ExcludeFile  string  `mapstructure:"exclude-file"`
}

type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ranker ranks resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-output", "stdout", "where to write logs: stdout, stderr or a file path")
	rootCmd.PersistentFlags().Float64("threshold", suitability.DefaultThreshold, "score (in percent) from which a resume is labeled as suitable")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-output", rootCmd.PersistentFlags().Lookup("log-output"))
	viper.BindPFlag("threshold", rootCmd.PersistentFlags().Lookup("threshold"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("threshold", suitability.DefaultThreshold)
	viper.SetDefault("filters.minimum-score", 0)
	viper.SetDefault("filters.top", 0)
	viper.SetDefault("filters.exclude-file", "")
	viper.SetDefault("storage.enabled", true)
	viper.SetDefault("storage.driver", storage.DriverSQLite)
	viper.SetDefault("storage.dsn", "")
	viper.SetDefault("storage.dsn-file", "")
	viper.SetDefault("server.address", server.DefaultAddress)
	viper.SetDefault("server.upload-dir", server.DefaultUploadDir)
	viper.SetDefault("server.max-upload-bytes", server.DefaultMaxUploadBytes)
	viper.SetDefault("server.rate-limit", 5)
	viper.SetDefault("server.rate-burst", 10)
}

func initConfig() {
	// Config is not needed to print the version.
	if versionCmd.CalledAs() != "" {
		return
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config the file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Storage == nil {
		config.Storage = &StorageConfig{Driver: storage.DriverSQLite}
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}

	return config, nil
}
