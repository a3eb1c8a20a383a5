// chatctl is a small command line front end for the Doc Chat AI API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	docchat "github.com/toskypd/doc-chat-ai"
	"github.com/toskypd/doc-chat-ai/config"
	"github.com/toskypd/doc-chat-ai/version"
)

var (
	flagConfig  string
	flagVerbose bool

	flagStream      bool
	flagSession     string
	flagModel       string
	flagTemperature float64
	flagMaxTokens   int
	flagContext     string
)

var rootCmd = &cobra.Command{
	Use:           "chatctl",
	Short:         "Ask questions against the Doc Chat AI API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Send a query and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Get().Text())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", defaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	askCmd.Flags().BoolVar(&flagStream, "stream", false, "stream the answer as it is generated")
	askCmd.Flags().StringVar(&flagSession, "session", "", "session id to continue a conversation")
	askCmd.Flags().StringVar(&flagModel, "model", "", "model name")
	askCmd.Flags().Float64Var(&flagTemperature, "temperature", 0, "sampling temperature")
	askCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "response token limit")
	askCmd.Flags().StringVar(&flagContext, "context", "", "extra grounding text for this query")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatctl.yaml"
	}
	return home + "/.config/chatctl/chatctl.yaml"
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newClient(cfg config.Config, logger *slog.Logger) (*docchat.Client, error) {
	opts := []docchat.Option{
		docchat.WithUserAgent(version.Get().UserAgent()),
		docchat.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, docchat.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Origin != "" {
		opts = append(opts, docchat.WithOrigin(cfg.Origin))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, docchat.WithTimeout(cfg.Timeout))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, docchat.WithHeaders(cfg.Headers))
	}
	return docchat.New(cfg.APIKey, opts...)
}

// requestOptions merges config defaults with ask flags; flags win.
func requestOptions(cmd *cobra.Command, cfg config.Config) []docchat.RequestOption {
	var opts []docchat.RequestOption

	if flagSession != "" {
		opts = append(opts, docchat.WithSession(flagSession))
	}

	model := cfg.Model
	if cmd.Flags().Changed("model") {
		model = flagModel
	}
	if model != "" {
		opts = append(opts, docchat.WithModel(model))
	}

	if cmd.Flags().Changed("temperature") {
		opts = append(opts, docchat.WithTemperature(flagTemperature))
	} else if cfg.Temperature != 0 {
		opts = append(opts, docchat.WithTemperature(cfg.Temperature))
	}

	if cmd.Flags().Changed("max-tokens") {
		opts = append(opts, docchat.WithMaxTokens(flagMaxTokens))
	} else if cfg.MaxTokens > 0 {
		opts = append(opts, docchat.WithMaxTokens(cfg.MaxTokens))
	}

	if flagContext != "" {
		opts = append(opts, docchat.WithContext(flagContext))
	}
	return opts
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	loader, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg := loader.Get()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	opts := requestOptions(cmd, cfg)
	ctx := cmd.Context()

	if flagStream {
		return streamAnswer(ctx, cmd.OutOrStdout(), client, query, opts)
	}

	start := time.Now()
	resp, err := client.Send(ctx, query, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
	logger.Debug("request complete",
		"sessionId", resp.SessionID,
		"elapsed", time.Since(start),
	)
	if resp.OutOfContext != nil && *resp.OutOfContext {
		logger.Warn("answer is outside the indexed documents")
	}
	return nil
}

func streamAnswer(ctx context.Context, w io.Writer, client *docchat.Client, query string, opts []docchat.RequestOption) error {
	stream, err := client.SendStream(ctx, query, opts...)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return err
		}

		switch chunk.Type {
		case docchat.ChunkContent:
			fmt.Fprint(w, chunk.Content)
		case docchat.ChunkError:
			return &docchat.Error{Kind: docchat.ErrKindAPI, Message: chunk.Message}
		case docchat.ChunkDone:
			fmt.Fprintln(w)
			return nil
		}
	}
}

func main() {
	// A local .env is convenient in development; ignore it when absent.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
