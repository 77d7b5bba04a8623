package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"examprep/internal/logger"
	"examprep/internal/services"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	logLevel   string
	logFile    string
	testMode   bool
	storage    string
	provider   string
	model      string
	width      int
	json       bool
}

// appLoader builds the application for one command invocation.
type appLoader func(opts *rootOptions) (*app, error)

func newRootCommand(load appLoader) *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "examprep",
		Short: "examprep - AI study frameworks for exam preparation",
		Long: `examprep generates a structured study framework for a syllabus topic:
background, news, multi-dimensional analysis, practice questions and sources.
Accounts and topic history are kept in local storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := logger.Configure(opts.logLevel, opts.logFile, opts.testMode); err != nil {
				return fmt.Errorf("error configuring logger: %w", err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	flags.BoolVar(&opts.testMode, "test-mode", false, "Run in deterministic test mode")
	flags.StringVar(&opts.configFile, "config", "", "Path to a config.yaml file")
	flags.StringVar(&opts.storage, "storage", "", "Storage backend (file|memory|redis|sqlite)")
	flags.StringVar(&opts.provider, "provider", "", "LLM provider (gemini|openai|anthropic)")
	flags.StringVar(&opts.model, "model", "", "Model identifier, defaults to the provider's default model")
	flags.IntVar(&opts.width, "width", 0, "Column width for wrapped output [default: 80]")
	flags.BoolVar(&opts.json, "json", false, "Print JSON lines instead of text")

	bindings := map[string]string{
		services.KeyLogLevel:       "log-level",
		services.KeyLogFile:        "log-file",
		services.KeyTestMode:       "test-mode",
		services.KeyStorageBackend: "storage",
		services.KeyProvider:       "provider",
		services.KeyModel:          "model",
	}
	for key, flag := range bindings {
		if err := opts.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("error binding %s flag: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		newGenerateCommand(opts, load),
		newAskCommand(opts, load),
		newSignUpCommand(opts, load),
		newConfirmCommand(opts, load),
		newLogInCommand(opts, load),
		newLogOutCommand(opts, load),
		newWhoAmICommand(opts, load),
		newHistoryCommand(opts, load),
		newServeCommand(opts, load),
		newConfigCommand(opts, load),
		newProvidersCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

// withApp loads the app, runs fn and releases the app's resources.
func withApp(opts *rootOptions, load appLoader, fn func(a *app) error) error {
	a, err := load(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
