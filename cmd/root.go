package cmd

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/auditlog/internal/filter"
	"github.com/loog-project/auditlog/internal/registry"
	"github.com/loog-project/auditlog/internal/store"
	bboltstore "github.com/loog-project/auditlog/internal/store/bbolt"
)

var (
	// persistent flags
	cfgFile         string
	registryFile    string
	databaseFile    string
	enableDebugMode bool
	filterSource    string
)

var rootCmd = &cobra.Command{
	Use:   "auditlog",
	Short: "Field level audit log for record snapshots",
	Long: `auditlog compares two snapshots of a record field by field and keeps the
changes as history entries. Which models are tracked, and which of their fields
take part, is read from a registry file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

var setupLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.auditlog.yaml)")
	rootCmd.PersistentFlags().StringVarP(&registryFile, "registry", "r", "",
		"Path to the registry file listing tracked models and their field configuration")
	rootCmd.PersistentFlags().StringVar(&databaseFile, "db", defaultDatabaseFile(),
		"Path to the history database")
	rootCmd.PersistentFlags().BoolVar(&enableDebugMode, "debug", false,
		"Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&filterSource, "filter", "f", filter.DefaultExpression,
		"Expression selecting which history entries are written and shown")

	// allow some flags to be set via environment variables / config file
	mustBind("registry",
		viper.BindPFlag("registry", rootCmd.PersistentFlags().Lookup("registry")))
	mustBind("db",
		viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db")))
	mustBind("debug",
		viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	mustBind("filter",
		viper.BindPFlag("filter", rootCmd.PersistentFlags().Lookup("filter")))
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".auditlog")
	}

	viper.SetEnvPrefix("AUDITLOG")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		setupLog.Info().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func configureLogging() {
	if viper.GetBool("debug") {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
			Timestamp().
			Caller().
			Logger().
			Level(zerolog.DebugLevel)
		return
	}
	// stdout carries command output, keep it clean
	log.Logger = zerolog.Nop()
}

// loadRegistry returns the configured registry, or an empty one.
func loadRegistry() (*registry.Registry, error) {
	path := viper.GetString("registry")
	if path == "" {
		log.Debug().Msg("No registry file given, tracking models without field configuration")
		return registry.New(), nil
	}
	log.Debug().Str("registry", path).Msg("Loading registry...")
	return registry.LoadFile(path)
}

func compileFilter() (*filter.Filter, error) {
	source := viper.GetString("filter")
	log.Debug().Str("expression", source).Msg("Compiling filter expression...")
	return filter.Compile(source)
}

func openStore(durable bool) (store.EntryStore, error) {
	path := viper.GetString("db")
	log.Debug().Str("db", path).Bool("durable", durable).Msg("Opening history database...")
	return bboltstore.New(path, store.DefaultCodec, durable)
}

func defaultDatabaseFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".auditlog.db")
	}
	return "auditlog.db"
}

func mustBind(flagName string, err error) {
	if err != nil {
		log.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
