package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-rsvp/internal/config"
)

// flags overrides a subset of the environment configuration
type flags struct {
	dataDir  string
	logLevel string
	output   string
}

var (
	cfg  *config.Config
	opts flags
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wedding-rsvp",
		Short: "Wedding RSVP server and WhatsApp follow-up tool",
		Long: `wedding-rsvp collects RSVPs from the wedding site, keeps the guest list,
and follows up over WhatsApp with invited guests who have not answered yet.

Configuration is read from the environment (WHATSAPP_DATA_DIR, GUEST_STORE,
RSVP_STORE, ...); the flags below override it.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("data-dir") {
				loaded.WhatsAppDataDir = opts.dataDir
				if os.Getenv("GUESTS_FILE") == "" {
					loaded.GuestsFile = filepath.Join(opts.dataDir, "guests.json")
				}
				if os.Getenv("SQLITE_PATH") == "" {
					loaded.SQLitePath = filepath.Join(opts.dataDir, "rsvps.db")
				}
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = opts.logLevel
			}
			cfg = loaded
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "data", "Data directory (env: WHATSAPP_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBotCmd())
	rootCmd.AddCommand(newGuestsCmd())
	rootCmd.AddCommand(newFollowupsCmd())
	rootCmd.AddCommand(newBackupCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(c *config.Config, w io.Writer) zerolog.Logger {
	if c.LogPretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(c.Level()).With().Timestamp().Logger()
}
