package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/config"
	"github.com/Veraticus/regulaite/internal/queue"
	"github.com/spf13/cobra"
)

func queueConfig(settings config.Settings) (queue.Config, error) {
	if err := settings.ValidateAMQP(); err != nil {
		return queue.Config{}, common.NewUserError("invalid AMQP configuration", err)
	}
	return queue.Config{
		URL:       settings.AMQP.URL,
		Exchange:  settings.AMQP.Exchange,
		Queue:     settings.AMQP.Queue,
		ResultKey: settings.AMQP.ResultKey,
	}, nil
}

// dialQueue connects to the broker, retrying while it starts up.
func dialQueue(ctx context.Context, cfg queue.Config) (*queue.Client, error) {
	var client *queue.Client
	err := common.WithRetry(ctx, func() error {
		var dialErr error
		client, dialErr = queue.Dial(cfg, slog.Default())
		return dialErr
	}, common.RetryOptions{
		Logger:       slog.Default(),
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	return client, nil
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process check requests from AMQP",
		Long: `Consume check requests from the configured AMQP queue and publish each
result under the result routing key. Set amqp.url (or REGULAITE_AMQP_URL).`,
		RunE: runWorker,
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}
	cfg, err := queueConfig(p.settings)
	if err != nil {
		return err
	}

	client, err := dialQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			slog.Error("Failed to close AMQP connection", "error", closeErr)
		}
	}()

	processor := queue.NewProcessor(p.engine, client, slog.Default())
	return client.Consume(ctx, processor)
}

func submitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <text...>",
		Short: "Queue a transaction for the worker",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSubmit,
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, err := queueConfig(settings)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return common.NewUserError("nothing to submit", common.ErrEmptyDescription)
	}

	client, err := dialQueue(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	req := queue.NewCheckRequest(text)
	if err := client.SubmitCheck(cmd.Context(), req); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), req.ID)
	return err
}
