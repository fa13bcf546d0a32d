package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/regulaite/internal/cli"
	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/Veraticus/regulaite/internal/statement"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

func checkFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-file <path>",
		Short: "Check every transaction in a statement file",
		Long: `Check each transaction of a bank statement independently.

OFX and QFX exports are read as statements; any other file is read as one
transaction description per line.

Examples:
  regulaite check-file ~/Downloads/hdfc-march.ofx
  regulaite check-file payments.txt --concurrency 8
  regulaite check-file payments.txt --no-explain`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckFile,
	}

	cmd.Flags().StringP("format", "f", statement.FormatAuto, "Input format (auto, ofx, text)")
	cmd.Flags().IntP("concurrency", "c", defaultConcurrency, "Number of entries checked at once")
	cmd.Flags().Bool("no-explain", false, "Skip explanations")
	cmd.Flags().Bool("json", false, "Print results as JSON")

	return cmd
}

func runCheckFile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	noExplain, _ := cmd.Flags().GetBool("no-explain")
	asJSON, _ := cmd.Flags().GetBool("json")

	if concurrency < 1 {
		return common.NewUserError("--concurrency must be at least 1", common.ErrInvalidInput)
	}

	entries, err := statement.ReadFile(ctx, args[0], format, slog.Default())
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not read %s", args[0]), err)
	}
	if len(entries) == 0 {
		slog.Warn("No transactions found", "path", args[0])
		return nil
	}

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	run := p.engine.Run
	if noExplain {
		run = p.engine.Assess
	}

	start := time.Now()
	rows, err := checkEntries(ctx, entries, run, concurrency, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.Info("Statement checked",
		"entries", len(rows),
		"duration", time.Since(start))

	out := cmd.OutOrStdout()
	if asJSON {
		results := make([]engine.Result, len(rows))
		for i, row := range rows {
			results[i] = row.Result
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return cli.RenderBatch(out, rows)
}

// checkEntries runs each entry through run with at most limit in flight.
// Rows keep the input order.
func checkEntries(
	ctx context.Context,
	entries []model.StatementEntry,
	run func(context.Context, string) engine.Result,
	limit int,
	progress io.Writer,
) ([]cli.BatchRow, error) {
	rows := make([]cli.BatchRow, len(entries))
	bar := cli.NewProgressBar(progress, len(entries), "Checking")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = cli.BatchRow{Entry: entry, Result: run(gctx, entry.Text())}
			_ = bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("statement check interrupted: %w", err)
	}
	return rows, nil
}
