package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikeboe/doc-analyst/pkg/app"
	"github.com/mikeboe/doc-analyst/pkg/config"
	"github.com/mikeboe/doc-analyst/pkg/extract"
	"github.com/mikeboe/doc-analyst/pkg/orchestrator"
	"github.com/mikeboe/doc-analyst/pkg/research"
)

var (
	configFile string
	filePath   string
	query      string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "doc-analyst",
		Short: "A terminal-based document analyst",
		Long:  `doc-analyst ingests a PDF or DOCX document and answers summary, abstract, keyword and free-form questions about it.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configFile == "" {
				configFile = os.Getenv("CONFIG_FILE")
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file overlaying the environment")

	ingestCmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a document and start an interactive query session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := ingest(cmd.Context(), a, args[0], cmd.OutOrStdout()); err != nil {
				return err
			}
			return interactive(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	askCmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a single query, optionally ingesting a document first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("--query must not be empty")
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if filePath != "" {
				if err := ingest(cmd.Context(), a, filePath, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return answer(cmd.Context(), a, query, cmd.OutOrStdout())
		},
	}
	askCmd.Flags().StringVarP(&filePath, "file", "f", "", "Document to ingest before asking")
	askCmd.Flags().StringVarP(&query, "query", "q", "", "Query to answer")

	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Print the agent a query is routed to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("--query must not be empty")
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.Orchestrator.RouteQuery(cmd.Context(), query))
			return nil
		},
	}
	routeCmd.Flags().StringVarP(&query, "query", "q", "", "Query to route")

	rootCmd.AddCommand(ingestCmd, askCmd, routeCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, err
	}

	logger := app.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	return app.New(ctx, cfg, logger)
}

func ingest(ctx context.Context, a *app.App, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	tag, err := extract.TypeFromFilename(path)
	if err != nil {
		fmt.Fprintln(out, research.MsgUnsupportedType)
		return err
	}

	res, err := a.Agent.Ingest(ctx, data, tag)
	if err != nil {
		return fmt.Errorf("error ingesting the document: %w", err)
	}

	fmt.Fprintln(out, res.Message)
	if res.Message != research.MsgIngested {
		return errors.New(res.Message)
	}
	return nil
}

func answer(ctx context.Context, a *app.App, q string, out io.Writer) error {
	if a.Orchestrator.RouteQuery(ctx, q) == orchestrator.RouteData {
		fmt.Fprintln(out, "Data analysis is not available in the terminal; upload CSV or Excel files to the server.")
		return nil
	}

	res, err := a.Agent.HandleQuery(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, res.Message)
	for _, s := range res.Sources {
		fmt.Fprintf(out, "  [chunk %d, score %.3f]\n", s.Position, s.Score)
	}
	return nil
}

func interactive(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nQuery (empty to quit): ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" || q == "exit" || q == "quit" {
			return nil
		}

		if err := answer(ctx, a, q, out); err != nil {
			slog.Error("Query failed", "query", q, "error", err)
		}
	}
}
