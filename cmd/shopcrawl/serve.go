package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/shopcrawl/internal/api"
	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/fetcher"
	"github.com/IshaanNene/shopcrawl/internal/ner"
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	var (
		port      int
		gazetteer string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the product extraction endpoint",
		Long: `Serve POST /process, which fetches the posted URL and lists the product names
found in the page text. Names are matched against a gazetteer built from a
labelled JSONL file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.Server.Port = port
				}
				if cmd.Flags().Changed("gazetteer") {
					cfg.Server.GazetteerPath = gazetteer
				}
			})
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port")
	cmd.Flags().StringVarP(&gazetteer, "gazetteer", "g", "", "labelled JSONL file to build the product gazetteer from")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cfg.Logging)

	gaz, err := ner.LoadGazetteer(cfg.Server.GazetteerPath, logger)
	if err != nil {
		return err
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(cfg.Server, httpFetcher, gaz, logger).ListenAndServe(ctx)
}
