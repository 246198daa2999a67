package main

import (
	"context"
	"io"

	"github.com/Charpup/openclaw-memu-skill/internal/memu"
	"github.com/spf13/cobra"
)

var memorizeAuto bool

var memorizeCmd = &cobra.Command{
	Use:   "memorize",
	Short: "Store a memory from stdin",
	Long: `Store a memory. Reads {"content": "...", "user_id": "..."} from stdin.

With --auto, content that matches no trigger rule is silently skipped
and the result reports "stored": false.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := memu.Default(ctx)
		if err != nil {
			return writeError(cmd.OutOrStdout(), err)
		}
		defer memu.CloseDefault()
		return runMemorize(ctx, svc, cmd.InOrStdin(), cmd.OutOrStdout(), memorizeAuto)
	},
}

func init() {
	memorizeCmd.Flags().BoolVar(&memorizeAuto, "auto", false,
		"only store content that matches a trigger rule")
}

type memorizeRequest struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

func runMemorize(ctx context.Context, svc *memu.Service, in io.Reader, out io.Writer, auto bool) error {
	var req memorizeRequest
	if err := decodeRequest(in, &req); err != nil {
		return writeError(out, err)
	}

	result, err := svc.Memorize(ctx, req.Content, req.UserID, auto)
	if err != nil {
		return writeError(out, err)
	}
	return writeResult(out, "result", result)
}
