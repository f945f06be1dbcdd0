package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/prodaudit/prodaudit/internal/utils"
	"github.com/prodaudit/prodaudit/pkg/storage"
	"github.com/spf13/cobra"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the prodaudit database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := dbPathFlag(cmd)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			utils.Log.Warnf("Couldn't retrieve schema: %v", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored audit runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs in the database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTARTED\tFINISHED\tBRAND\tITEMS\t")
		for _, r := range runs {
			finished := "-"
			if !r.FinishedAt.IsZero() {
				finished = r.FinishedAt.Local().Format(time.DateTime)
			}
			brand := r.Brand
			if brand == "" {
				brand = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t\n", r.ID, r.StartedAt.Local().Format(time.DateTime), finished, brand, r.ItemCount)
		}
		return w.Flush()
	},
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored run as a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")
		if runID == "" {
			return fmt.Errorf("--run is required (see 'prodaudit db runs')")
		}

		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		output, format, err := resolveOutput(output, format)
		if err != nil {
			return err
		}

		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.LoadRecords(context.Background(), runID)
		if err != nil {
			if errors.Is(err, storage.ErrRunNotFound) {
				return fmt.Errorf("run %s not found", runID)
			}
			return err
		}

		if err := writeReport(output, format, records); err != nil {
			return err
		}
		utils.Log.Infof("Exported %d records from run %s to %s", len(records), runID, output)
		return nil
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints how many records of each run were scraped, guessed or fell back.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExistingDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		stats, err := db.GetStats(context.Background(), limit)
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "RUN\tSTARTED\tSCRAPED\tGUESSED\tFALLBACK\tTOTAL\t")

		var total storage.RunStats
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t\n", s.RunID, s.StartedAt.Local().Format(time.DateTime), s.Scraped, s.Guessed, s.Fallback, s.Total())
			total.Scraped += s.Scraped
			total.Guessed += s.Guessed
			total.Fallback += s.Fallback
		}

		fmt.Fprintln(w, " \t \t \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t \t%d\t%d\t%d\t%d\t\n", total.Scraped, total.Guessed, total.Fallback, total.Total())

		return w.Flush()
	},
}

// openExistingDB opens the database without creating a new file.
func openExistingDB(cmd *cobra.Command) (*storage.DB, error) {
	dbPath := dbPathFlag(cmd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", dbPath)
	}
	return storage.Open(dbPath)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(runsCmd)
	dbCmd.AddCommand(exportCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default: db.path from config, prodaudit.sqlite)")

	runsCmd.Flags().Int("limit", 50, "Maximum number of runs to list")
	statsCmd.Flags().Int("limit", 50, "Maximum number of runs to include")

	exportCmd.Flags().String("run", "", "ID of the run to export")
	exportCmd.Flags().StringP("output", "o", "", "Report path (default master_audit_report.<format>, '-' for stdout)")
	exportCmd.Flags().String("format", "", "Report format: xlsx, csv, json, md, html")
}
