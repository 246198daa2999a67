package main

import (
	"encoding/json"
	"io"

	"github.com/Charpup/openclaw-memu-skill/internal/trigger"
	"github.com/spf13/cobra"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Evaluate trigger rules against stdin content",
	Long: `Evaluate the trigger rules without storing anything.
Reads {"content": "..."} from stdin.

Prints the match (category, pattern, captured content) when a rule
fires, or {"skip": true} when none does. Needs no configuration and
never touches the backend, so it is safe in pipelines that decide
whether to call memorize at all.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTriggers(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

type triggersRequest struct {
	Content string `json:"content"`
}

func runTriggers(in io.Reader, out io.Writer) error {
	var req triggersRequest
	if err := decodeRequest(in, &req); err != nil {
		return writeError(out, err)
	}

	match := trigger.MustNew().Evaluate(req.Content)
	enc := json.NewEncoder(out)
	if !match.Matched {
		return enc.Encode(map[string]bool{"skip": true})
	}
	return enc.Encode(match)
}
