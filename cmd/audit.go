package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prodaudit/prodaudit/internal/utils"
	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/prodaudit/prodaudit/pkg/batch"
	"github.com/prodaudit/prodaudit/pkg/render"
	"github.com/prodaudit/prodaudit/pkg/report"
	"github.com/prodaudit/prodaudit/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNothingQueued = errors.New("nothing to audit: pass --links, --links-file or --file")

// auditCmd implements: prodaudit audit
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a batch of product pages and export a report",
	Long: `Audit a batch of product pages and export a report.

Pasted links are queued first, followed by the rows of the input file.
Files may be .csv, .xlsx or .json (an array of objects). The ID, title
and URL columns are found by header name (upc/asin/gtin/id, title/name,
link/url/website).`,
	Example: `  prodaudit audit -f products.xlsx --brand Acme
  prodaudit audit --links "https://www.walmart.com/ip/123" -o report.csv
  cat urls.txt | prodaudit audit --links-file - --engine http --db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unknown argument: '%s'. See 'prodaudit audit --help'", args[0])
		}

		items, err := collectItems(cmd)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return errNothingQueued
		}

		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		output, format, err = resolveOutput(output, format)
		if err != nil {
			return err
		}

		renderer, err := render.Open(renderOptions())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		useDB, _ := cmd.Flags().GetBool("db")
		started := time.Now()
		brand := viper.GetString("audit.brand")

		utils.Log.Infof("Auditing %d items with the %s engine", len(items), viper.GetString("render.engine"))
		records := audit.RunBatch(ctx, items, audit.BatchConfig{
			Renderer: renderer,
			Builder:  audit.NewBuilder(brand),
			Log:      utils.Log,
			OnItemDone: func(index, total int, item audit.Item, rec audit.Record) {
				utils.Log.Debugf("Item %d/%d done: %s [%s]", index+1, total, item.Title, rec.Provenance)
			},
		})

		if err := writeReport(output, format, records); err != nil {
			return err
		}
		utils.Log.Infof("Report written to %s", output)

		if useDB {
			if err := saveRun(ctx, dbPathFlag(cmd), brand, started, records); err != nil {
				return err
			}
		}

		// The report itself went to stdout.
		if output == "-" {
			return nil
		}
		if err := printPreview(os.Stdout, records); err != nil {
			return err
		}
		fmt.Printf("Audit complete: %d items processed\n", len(records))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringArray("links", nil, "Product URLs, newline-delimited (repeatable)")
	auditCmd.Flags().String("links-file", "", "Read newline-delimited product URLs from a file ('-' for stdin)")
	auditCmd.Flags().StringP("file", "f", "", "Batch file with product rows (.csv, .xlsx or .json)")
	auditCmd.Flags().String("brand", "", "Brand recorded on every row")
	auditCmd.Flags().StringP("output", "o", "", "Report path (default "+report.DefaultFilename+")")
	auditCmd.Flags().String("format", "", "Report format: xlsx, csv, json, md, html (default: from the output extension)")
	auditCmd.Flags().String("engine", "", "Render engine: browser or http")
	auditCmd.Flags().Duration("settle", 0, "Upper bound on the post-navigation settle wait")
	auditCmd.Flags().String("settle-strategy", "", "Settle strategy: idle or fixed")
	auditCmd.Flags().String("ready-selector", "", "CSS selector that marks a page as ready")
	auditCmd.Flags().Float64("rate", 0, "Maximum page fetches per second (0 = unlimited)")
	auditCmd.Flags().Int("retries", 0, "Retries per failed fetch (http engine only)")
	auditCmd.Flags().Int("preview", 0, "Rows of the report to print when done")
	auditCmd.Flags().Bool("db", false, "Save the run to the database")
	auditCmd.Flags().String("dbpath", "", "Path to SQLite DB file (default: prodaudit.sqlite in CWD)")

	bindFlag("audit.brand", "brand")
	bindFlag("render.engine", "engine")
	bindFlag("render.settle", "settle")
	bindFlag("render.settle_strategy", "settle-strategy")
	bindFlag("render.ready_selector", "ready-selector")
	bindFlag("render.rate", "rate")
	bindFlag("render.retries", "retries")
	bindFlag("report.preview", "preview")
}

// bindFlag lets an explicitly set audit flag override the config value.
func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, auditCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func collectItems(cmd *cobra.Command) ([]audit.Item, error) {
	title := viper.GetString("audit.placeholder_title")

	var items []audit.Item
	links, _ := cmd.Flags().GetStringArray("links")
	items = append(items, batch.ParseLinks(strings.Join(links, "\n"), title)...)

	linksFile, _ := cmd.Flags().GetString("links-file")
	if linksFile != "" {
		text, err := readLinksFile(linksFile)
		if err != nil {
			return nil, err
		}
		items = append(items, batch.ParseLinks(text, title)...)
	}

	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		rows, err := batch.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		utils.Log.Debugf("Loaded %d rows from %s", len(rows), file)
		items = append(items, rows...)
	}
	return items, nil
}

func readLinksFile(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading links: %w", err)
	}
	return string(b), nil
}

func renderOptions() render.Options {
	return render.Options{
		Engine:         viper.GetString("render.engine"),
		Settle:         viper.GetDuration("render.settle"),
		SettleStrategy: viper.GetString("render.settle_strategy"),
		ReadySelector:  viper.GetString("render.ready_selector"),
		Timeout:        viper.GetDuration("render.timeout"),
		UserAgent:      viper.GetString("render.user_agent"),
		ExecutablePath: viper.GetString("render.executable_path"),
		Proxy:          viper.GetString("render.proxy"),
		Retries:        viper.GetInt("render.retries"),
		Rate:           viper.GetFloat64("render.rate"),
		Log:            utils.Log,
	}
}

func saveRun(ctx context.Context, dbPath, brand string, started time.Time, records []audit.Record) error {
	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// The batch may have been interrupted; the records are still worth keeping.
	ctx = context.WithoutCancel(ctx)
	run, err := db.CreateRun(ctx, brand, started)
	if err != nil {
		return err
	}
	if err := db.SaveRecords(ctx, run.ID, records, time.Now()); err != nil {
		return err
	}
	utils.Log.Infof("Saved run %s to %s", run.ID, dbPath)
	return nil
}

func printPreview(w io.Writer, records []audit.Record) error {
	limit := viper.GetInt("report.preview")
	if limit <= 0 {
		return nil
	}
	return report.Preview(w, records, limit)
}
