package main

import (
	"context"
	"io"

	"github.com/Charpup/openclaw-memu-skill/internal/memu"
	"github.com/spf13/cobra"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve memories matching a query from stdin",
	Long: `Retrieve memories by semantic similarity.
Reads {"query": "...", "user_id": "...", "limit": N} from stdin.

An omitted limit falls back to the configured default. An explicit
non-positive limit is rejected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := memu.Default(ctx)
		if err != nil {
			return writeError(cmd.OutOrStdout(), err)
		}
		defer memu.CloseDefault()
		return runRetrieve(ctx, svc, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

type retrieveRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	// Limit distinguishes omitted (nil, use the default) from an
	// explicit value, which is validated even when non-positive.
	Limit *int `json:"limit"`
}

func runRetrieve(ctx context.Context, svc *memu.Service, in io.Reader, out io.Writer) error {
	var req retrieveRequest
	if err := decodeRequest(in, &req); err != nil {
		return writeError(out, err)
	}

	limit := svc.DefaultLimit()
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := svc.Retrieve(ctx, req.Query, req.UserID, limit)
	if err != nil {
		return writeError(out, err)
	}
	if results == nil {
		results = []memu.RetrieveResult{}
	}
	return writeResult(out, "results", results)
}
