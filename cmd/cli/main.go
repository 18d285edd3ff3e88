package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diario-cli",
		Short: "Diario Financeiro CLI tool",
		Long:  `A command line interface for interacting with the Diario Financeiro ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Validate ledger integrity and apply corrections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkIntegrity()
		},
	}

	recalculateCmd := &cobra.Command{
		Use:   "recalculate <from-date>",
		Short: "Force a full recalculation from a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return recalculate(args[0])
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <date>",
		Short: "Show the running balance at the end of a day (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showBalance(args[0])
		},
	}

	statsCmd := &cobra.Command{
		Use:   "cache-stats",
		Short: "Show balance cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCacheStats()
		},
	}

	ledgerCmd.AddCommand(integrityCmd, recalculateCmd, balanceCmd, statsCmd)
	rootCmd.AddCommand(ledgerCmd)

	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Entry operations",
	}

	var entryKind, entryRecurrence string
	createCmd := &cobra.Command{
		Use:   "create <date> <amount>",
		Short: "Create a ledger entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return createEntry(args[0], args[1], entryKind, entryRecurrence)
		},
	}
	createCmd.Flags().StringVar(&entryKind, "kind", "debit", "Entry kind: credit, debit or neutral_debit")
	createCmd.Flags().StringVar(&entryRecurrence, "recurrence", "", "Recurrence rule id")

	entryCmd.AddCommand(createCmd)
	rootCmd.AddCommand(entryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkIntegrity() error {
	result, status, err := post("/api/v1/ledger/integrity", nil)
	if err != nil {
		return err
	}

	if status == http.StatusOK {
		fmt.Println("Integrity check PASSED")
	} else {
		fmt.Printf("Integrity check FAILED (Status: %d)\n", status)
	}

	fmt.Printf("Score: %v\n", result["score"])
	fmt.Printf("Checked periods: %v\n", result["checked_periods"])
	if corrected, ok := result["correction_applied"].(bool); ok && corrected {
		fmt.Println("A corrective pass was applied")
	}
	if errs, ok := result["errors"].([]any); ok {
		for _, e := range errs {
			fmt.Printf("  error: %v\n", e)
		}
	}

	if status != http.StatusOK {
		return fmt.Errorf("ledger integrity check failed")
	}

	return nil
}

func recalculate(from string) error {
	payload := map[string]string{"from": from}
	result, status, err := post("/api/v1/ledger/recalculate", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("recalculation failed (status %d): %v", status, result["message"])
	}

	fmt.Printf("Recalculated %v days from %s\n", result["days_processed"], from)

	return nil
}

func showBalance(date string) error {
	result, status, err := get("/api/v1/ledger/balance?date=" + date)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("balance request failed (status %d): %v", status, result["message"])
	}

	fmt.Printf("%v: %v\n", result["date"], result["balance"])

	return nil
}

func showCacheStats() error {
	result, status, err := get("/api/v1/ledger/cache/stats")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("cache stats request failed (status %d)", status)
	}

	fmt.Printf("Hit rate: %v\n", result["hit_rate"])
	fmt.Printf("Hits: %v  Misses: %v\n", result["total_hits"], result["total_misses"])
	fmt.Printf("Invalidated: %v\n", result["invalidated_count"])
	fmt.Printf("Last full recalculation: %v\n", result["last_full_recalculation"])

	return nil
}

func createEntry(date, amount, kind, recurrence string) error {
	payload := map[string]string{
		"date":   date,
		"amount": amount,
		"kind":   kind,
	}
	if recurrence != "" {
		payload["recurrence_id"] = recurrence
	}
	payload["source"] = "cli"

	result, status, err := post("/api/v1/entries", payload)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("entry creation failed (status %d): %v", status, result["message"])
	}

	if entry, ok := result["entry"].(map[string]any); ok {
		fmt.Printf("Created entry %v\n", entry["id"])
	}
	fmt.Printf("Propagated %v days\n", result["days_processed"])

	return nil
}

func get(path string) (map[string]any, int, error) {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeBody(resp)
}

func post(path string, payload any) (map[string]any, int, error) {
	client := &http.Client{Timeout: timeout}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}

	resp, err := client.Post(baseURL+path, "application/json", body)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeBody(resp)
}

func decodeBody(resp *http.Response) (map[string]any, int, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	result := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("parse response: %w", err)
		}
	}

	return result, resp.StatusCode, nil
}
