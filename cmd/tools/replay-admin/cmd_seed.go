package main

import (
	"encoding/json"
	"fmt"
	"os"

	"coach-generation/internal/llm"
	"coach-generation/internal/store"

	"github.com/spf13/cobra"
)

var seedFlags struct {
	userID       string
	operation    string
	requestFile  string
	responseFile string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a response as the latest replay record for a user and operation",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.userID, "user", "", "User id (required)")
	f.StringVar(&seedFlags.operation, "operation", "", "Operation, e.g. generate_launch_kit (required)")
	f.StringVar(&seedFlags.requestFile, "request", "", "JSON file with the request payload (default {})")
	f.StringVar(&seedFlags.responseFile, "response", "", "JSON file with the validated response object (required)")

	_ = seedCmd.MarkFlagRequired("user")
	_ = seedCmd.MarkFlagRequired("operation")
	_ = seedCmd.MarkFlagRequired("response")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	op, err := llm.ParseOperation(seedFlags.operation)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{}
	if seedFlags.requestFile != "" {
		if err := readObject(seedFlags.requestFile, &payload); err != nil {
			return err
		}
	}
	var response map[string]interface{}
	if err := readObject(seedFlags.responseFile, &response); err != nil {
		return err
	}

	req, err := llm.NewRequest(op, "", payload)
	if err != nil {
		return err
	}
	rec, err := store.NewReplayRecord(seedFlags.userID, req, response)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := s.InsertReplayRecord(ctx, rec); err != nil {
		return fmt.Errorf("insert replay record: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored replay record #%d for %s/%s (fingerprint %s)\n",
		rec.ID, rec.UserID, rec.Operation, rec.RequestFingerprint[:12])
	return nil
}

func readObject(path string, out *map[string]interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if *out == nil {
		return fmt.Errorf("%s must contain a JSON object", path)
	}
	return nil
}
