package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"

	"github.com/beetlebugorg/gmltopo/internal/report"
)

var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:   "gmltopo",
		Short: "Topology validation for GML, GeoJSON and shapefile surfaces",
	}
	dbPath    string
	verbosity int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database receiving the results")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 0, "Log verbosity (1 per theme, 2 per feature)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(versionCmd)
}

func newLogger() logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags))
}

// openStore opens the database named by path, or returns nil if path is empty.
func openStore(path string) *report.SQLiteStore {
	if path == "" {
		return nil
	}
	store, err := report.NewSQLiteStore(path)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", path, err)
	}
	return store
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gmltopo", version)
	},
}
