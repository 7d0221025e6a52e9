package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/garantiplus/brain-controller/internal/session"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to brain_memory.db")
	user := flag.String("user", "", "user id to inspect")
	last := flag.Int("last", 0, "show at most N transcript rows (0 = all)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	if *dbPath == "" || *user == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/brain_memory.db --user id [--last N] [--json]")
		os.Exit(2)
	}

	ledger, err := session.OpenLedger(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	if err := run(ledger, *user, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region report

type report struct {
	Profile    *session.Profile `json:"profile,omitempty"`
	Transcript []session.LogRow `json:"transcript"`
}

func run(ledger *session.Ledger, userID string, last int, jsonOut bool) error {
	var out report

	profile, err := ledger.Profile(userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// User may have transcript rows without profile fields yet.
	case err != nil:
		return fmt.Errorf("read profile: %w", err)
	default:
		out.Profile = &profile
	}

	out.Transcript, err = ledger.Transcript(userID, last)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	if jsonOut {
		return printJSON(out)
	}
	return printText(userID, out)
}

// #endregion report

// #region output

func printText(userID string, r report) error {
	fmt.Printf("User: %s\n", userID)
	if r.Profile != nil {
		fmt.Printf("  Name:  %s\n", orDash(r.Profile.CustomerName))
		fmt.Printf("  Email: %s\n", orDash(r.Profile.Email))
		fmt.Printf("  Phone: %s\n", orDash(r.Profile.PhoneNumber))
		fmt.Printf("  VIN:   %s\n", orDash(r.Profile.VIN))
		fmt.Printf("  Updated: %s\n", r.Profile.LastUpdated.Format("2006-01-02T15:04:05Z"))
	} else {
		fmt.Println("  (no profile on record)")
	}

	if len(r.Transcript) == 0 {
		fmt.Println("\nno transcript rows")
		return nil
	}

	fmt.Printf("\n%-6s  %-20s  %-5s  %-28s  %s\n", "Row", "Time", "Role", "Intent/Action", "Message")
	for _, row := range r.Transcript {
		tag := row.Intent
		if row.Role == "agent" {
			tag = row.ActionType
		}
		fmt.Printf("%-6d  %-20s  %-5s  %-28s  %s\n",
			row.LogID, row.Timestamp.Format("2006-01-02T15:04:05Z"), row.Role, orDash(tag), truncate(row.Message, 72))
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "..."
}

// #endregion output
