package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prodaudit/prodaudit/internal/utils"
	"github.com/prodaudit/prodaudit/pkg/batch"
	"github.com/prodaudit/prodaudit/pkg/render"
	"github.com/prodaudit/prodaudit/pkg/report"
	"github.com/prodaudit/prodaudit/pkg/storage"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prodaudit",
	Short: "Audit product pages for missing catalog attributes.",
	Long: `prodaudit visits product pages, pulls the values of a fixed catalog of
attributes out of the rendered text, and fills what it cannot find with
a title-based guess. Every value is tagged as scraped or guessed, and the
results are exported as a flat report.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.prodaudit.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	viper.BindPFlag("render.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
}

func setDefaults() {
	viper.SetDefault("audit.brand", "")
	viper.SetDefault("audit.placeholder_title", batch.DefaultTitle)

	viper.SetDefault("render.engine", render.EngineBrowser)
	viper.SetDefault("render.settle", render.DefaultSettle)
	viper.SetDefault("render.settle_strategy", render.SettleIdle)
	viper.SetDefault("render.ready_selector", "")
	viper.SetDefault("render.timeout", render.DefaultTimeout)
	viper.SetDefault("render.user_agent", render.DefaultUserAgent)
	viper.SetDefault("render.executable_path", "")
	viper.SetDefault("render.retries", 0)
	viper.SetDefault("render.rate", 0.0)
	viper.SetDefault("render.proxy", "")

	viper.SetDefault("report.format", report.FormatXLSX)
	viper.SetDefault("report.preview", 10)

	viper.SetDefault("db.path", storage.DefaultPath)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".prodaudit")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("prodaudit")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".prodaudit.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				utils.Log.Debugf("Could not create config file: %v", err)
			}
		} else {
			utils.Log.Warnf("Could not read config file: %v", err)
		}
	}
}
