// Package app provides the lingora server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lingora-ai/lingora/cmd/lingora/app/options"
)

const (
	// Name is the name of the application.
	Name = "lingora"

	commandDesc = `Lingora voice assistant service

A multilingual voice question answering service over your own documents.

This server provides:
  - Document upload with optional translation (fr, en, ar) and vector indexing
  - Spoken question answering: transcription, audio emotion analysis,
    language-filtered retrieval and emotion-aware generation
  - Answer annotation for game clients and speech synthesis of every response`
)

// NewCommand creates the root cobra command.
func NewCommand() *cobra.Command {
	opts := options.NewServerOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:           Name,
		Short:         "Lingora voice assistant service",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, configFile, opts); err != nil {
				return err
			}
			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file.")
	opts.AddFlags(cmd.Flags())
	return cmd
}

// loadConfig layers the config file and LINGORA_* environment variables
// under the command line flags.
func loadConfig(cmd *cobra.Command, configFile string, opts *options.ServerOptions) error {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(Name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return nil
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) error {
	if err := opts.Complete(); err != nil {
		return fmt.Errorf("failed to complete options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := setupSignalContext()

	server, err := cfg.NewServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return server.Run(ctx)
}

// setupSignalContext returns a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits immediately.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
