package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/Beastly713/steganoweb/pkg/config"
	"github.com/Beastly713/steganoweb/pkg/enhance"
	"github.com/Beastly713/steganoweb/pkg/logging"
	"github.com/Beastly713/steganoweb/pkg/service"
	"github.com/Beastly713/steganoweb/pkg/stego"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// Replaced by PersistentPreRunE once the config is loaded.
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	svc *service.Service
)

var rootCmd = &cobra.Command{
	Use:   "steganoweb",
	Short: "Hide text inside images",
	Long: `Steganoweb: hide short text messages in the least significant bits of
PNG and JPEG images, recover them again, and scatter a message across several
images so that any threshold of them brings it back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.LogFormat = logFormat
		}

		l, err := logging.New(cmd.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
		if err != nil {
			return err
		}

		opts := []service.Option{service.WithLogger(l)}
		if loaded.AI.Enabled {
			gemini, err := enhance.NewGemini(cmd.Context(), enhance.GeminiConfig{
				APIKey:   loaded.AI.APIKey,
				Model:    loaded.AI.Model,
				Endpoint: loaded.AI.Endpoint,
			})
			if err != nil {
				return err
			}
			opts = append(opts, service.WithEnhancer(gemini, time.Duration(loaded.AI.Timeout)))
		}

		logger = l
		svc = service.New(loaded.Limits(), opts...)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error().Err(err).Str("kind", stego.KindOf(err).String()).Msg("command failed")
		os.Exit(1)
	}
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to a JSON config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "Log format: console or json")
}
