package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/regulaite/internal/cli"
	"github.com/Veraticus/regulaite/internal/common"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [text...]",
		Short: "Check a single transaction",
		Long: `Check one transaction description for TDS and GST obligations.

The description is taken from the arguments, or from standard input when
no arguments are given.

Examples:
  regulaite check "Paid office rent amount 250000"
  regulaite check --json "Consulting fee of Rs. 45,000"
  echo "Labour contract payment 75000" | regulaite check`,
		RunE: runCheck,
	}

	cmd.Flags().Bool("json", false, "Print the full result as JSON")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return common.NewUserError("nothing to check: pass a transaction description", common.ErrEmptyDescription)
	}

	p, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	res := p.engine.Run(cmd.Context(), text)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	_, err = fmt.Fprintln(out, cli.RenderResult(res))
	return err
}
