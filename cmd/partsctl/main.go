package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bitfantasy/partslib/internal/app"
	"github.com/bitfantasy/partslib/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	lib        *app.App

	rootCmd = &cobra.Command{
		Use:   "partsctl",
		Short: "Manage a parts library from the command line",
		Long: `partsctl works directly against the parts library database and
file storage configured in config.yaml: import and export spreadsheets,
compute the inventory value, seed sample data or wipe the library.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadFrom(configPath)
			if err != nil {
				return err
			}
			logger, err := app.InitLogger(cfg.Log)
			if err != nil {
				return err
			}
			lib, err = app.New(cmd.Context(), cfg, logger)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if lib != nil {
				_ = lib.Logger.Sync()
				lib.Close()
			}
		},
	}
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml or ./config.yaml)")

	importCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet name (default: first sheet)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: generated name)")
	exportCmd.Flags().BoolVar(&exportArchived, "include-archived", false, "include archived components")
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deleting every record and stored file")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by number or name")
	listCmd.Flags().BoolVar(&listArchived, "include-archived", false, "include archived components")

	rootCmd.AddCommand(importCmd, exportCmd, clearCmd, valueCmd, summaryCmd, listCmd, seedCmd)
}
