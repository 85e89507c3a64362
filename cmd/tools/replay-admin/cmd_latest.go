package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"coach-generation/internal/llm"
	"coach-generation/internal/store"

	"github.com/spf13/cobra"
)

var latestFlags struct {
	userID    string
	operation string
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the replay record forced replay would serve",
	RunE:  runLatest,
}

func init() {
	f := latestCmd.Flags()
	f.StringVar(&latestFlags.userID, "user", "", "User id (required)")
	f.StringVar(&latestFlags.operation, "operation", "", "Operation (required)")

	_ = latestCmd.MarkFlagRequired("user")
	_ = latestCmd.MarkFlagRequired("operation")
}

func runLatest(cmd *cobra.Command, _ []string) error {
	op, err := llm.ParseOperation(latestFlags.operation)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	rec, err := s.FindLatestReplayRecord(ctx, latestFlags.userID, op)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(out, "No replay record for %s/%s\n", latestFlags.userID, op)
		return nil
	}
	if err != nil {
		return err
	}

	response, err := rec.Response()
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Record:      #%d\n", rec.ID)
	fmt.Fprintf(out, "Created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Fingerprint: %s\n", rec.RequestFingerprint)
	fmt.Fprintf(out, "%s\n", pretty)
	return nil
}
