package cmd

import (
	"testing"

	"github.com/spf13/viper"
)

func TestResolveOutput(t *testing.T) {
	viper.SetDefault("report.format", "xlsx")

	tests := []struct {
		name       string
		output     string
		format     string
		wantOutput string
		wantFormat string
		wantErr    bool
	}{
		{"defaults", "", "", "master_audit_report.xlsx", "xlsx", false},
		{"format only", "", "csv", "master_audit_report.csv", "csv", false},
		{"extension", "out/report.json", "", "out/report.json", "json", false},
		{"markdown extension", "report.markdown", "", "report.markdown", "md", false},
		{"explicit format wins", "report.txt", "HTML", "report.txt", "html", false},
		{"stdout uses configured format", "-", "", "-", "xlsx", false},
		{"unknown extension", "report.pdf", "", "", "", true},
		{"unknown format", "", "pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, format, err := resolveOutput(tt.output, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q %q", output, format)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output != tt.wantOutput || format != tt.wantFormat {
				t.Fatalf("resolveOutput(%q, %q) = %q, %q; want %q, %q", tt.output, tt.format, output, format, tt.wantOutput, tt.wantFormat)
			}
		})
	}
}
