// gomi — TUI и CLI для классификации бытового мусора по фотографии.
//
// Использование:
//
//	gomi                         # интерактивный TUI
//	gomi classify can.jpg        # классификация одного или нескольких файлов
//	gomi classify s3://photos/a.png
//	gomi health                  # состояние сервиса классификации
//	gomi bucket ls photos/       # изображения в S3 бакете
//
// Конфигурация: --config path/to/config.yaml, иначе ./config.yaml если он есть,
// иначе дефолты и GOMI_API_URL.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ilkoid/gomi-ai/pkg/config"
	"github.com/ilkoid/gomi-ai/pkg/gomi"
	"github.com/ilkoid/gomi-ai/pkg/utils"
)

// defaultConfigPath — конфиг в текущей директории, подхватывается если существует.
const defaultConfigPath = "config.yaml"

var (
	cfgFile  string
	langFlag string
	logDir   string
	debug    bool

	// cfg и lang заполняются в initApp до запуска любой команды
	cfg  *config.AppConfig
	lang gomi.Language

	rootCmd = &cobra.Command{
		Use:   "gomi",
		Short: "♻ Photo-based household waste sorting assistant",
		Long: `gomi sends a photo of a waste item to the classification service
and shows the category, collection schedule and preparation steps.

Without a subcommand it starts the interactive TUI.`,
		PersistentPreRunE: initApp,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd.Context())
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "display language: ja, en or both (overrides app.language)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for gomi-*.log files (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write DEBUG lines to the log")

	rootCmd.AddCommand(uiCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(bucketCmd())
}

func main() {
	// Rule 11: Ctrl+C отменяет контекст всех команд
	ctx, shutdown := utils.SetupGracefulShutdownWithContext()

	err := rootCmd.ExecuteContext(ctx)
	shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initApp загружает конфиг и открывает лог.
func initApp(_ *cobra.Command, _ []string) error {
	loaded, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	langName := cfg.App.Language
	if langFlag != "" {
		langName = langFlag
	}
	lang, err = gomi.ParseLanguage(langName)
	if err != nil {
		return err
	}

	if err := utils.InitLogger(logDir); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	utils.SetDebug(debug || cfg.App.Debug)
	utils.Info("Config loaded", "api", cfg.API.BaseURL, "lang", lang, "s3", cfg.S3.Enabled())
	return nil
}

// loadConfig: явный путь обязан существовать, ./config.yaml опционален.
func loadConfig(path string) (*config.AppConfig, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}
