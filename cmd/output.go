package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prodaudit/prodaudit/pkg/audit"
	"github.com/prodaudit/prodaudit/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveOutput settles the report path and format. An explicit format
// wins, then the output extension, then the configured default.
func resolveOutput(output, format string) (string, string, error) {
	var err error
	switch {
	case format != "":
		format, err = report.ParseFormat(format)
	case output != "" && output != "-":
		format, err = report.FormatFromPath(output)
	default:
		format, err = report.ParseFormat(viper.GetString("report.format"))
	}
	if err != nil {
		return "", "", err
	}
	if output == "" {
		output = strings.TrimSuffix(report.DefaultFilename, filepath.Ext(report.DefaultFilename)) + "." + format
	}
	return output, format, nil
}

// writeReport writes records to path, or to stdout when path is "-".
func writeReport(path, format string, records []audit.Record) error {
	if path == "-" {
		return report.Write(os.Stdout, format, records)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := report.Write(f, format, records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s report: %w", format, err)
	}
	return f.Close()
}

// dbPathFlag returns --dbpath when given, else the configured db.path.
func dbPathFlag(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("dbpath"); p != "" {
		return p
	}
	return viper.GetString("db.path")
}
