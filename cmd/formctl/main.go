// formctl - консольный клиент конструктора форм LeadRadar.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bmue76/leadradar/internal/leadradar/config"
	"github.com/spf13/cobra"
)

var version = "DEV"

var (
	apiURL   string
	apiToken string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "formctl",
	Short:         "Edit LeadRadar lead capture forms from the terminal",
	Long:          "formctl drives the LeadRadar form builder API: list and create forms, add fields from the library, reorder, duplicate, delete and patch them.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "formctl %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", config.GetEnvDefault("LEADRADAR_URL", "http://localhost:8080"), "LeadRadar API base url")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", config.GetEnv("LEADRADAR_TOKEN"), "Tenant API token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logs")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}
