package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/inspection-cli/internal/config"
	"github.com/sells-group/inspection-cli/internal/i18n"
)

var (
	cfg      *config.Config
	langFlag string
)

var rootCmd = &cobra.Command{
	Use:   "inspection-cli",
	Short: "Transit inspection compliance tooling",
	Long:  "Manages contract rule sets and the weekly execution requirements of transit inspections, and serves them over a JSON API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// localizer picks the output language: --lang first, then locale.language,
// then Finnish.
func localizer() i18n.Localizer {
	lang := langFlag
	if lang == "" && cfg != nil {
		lang = cfg.Locale.Language
	}
	if lang == "" {
		return i18n.Default()
	}
	loc, err := i18n.Parse(lang)
	if err != nil {
		zap.L().Warn("unsupported language, using default", zap.String("lang", lang), zap.Error(err))
		return i18n.Default()
	}
	return loc
}

func init() {
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "output language: fi, sv or en (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
