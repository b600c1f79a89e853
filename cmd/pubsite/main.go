package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:          "pubsite",
		Short:        "Bilingual marketing site with blog and contact form",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		RunE:  runServe,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Pre-render every page into a directory",
		RunE:  runExport,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the pubsite version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pubsite %s\n", version)
		},
	}

	envFiles []string
	outDir   string
)

func main() {
	rootCmd.PersistentFlags().StringSliceVarP(&envFiles, "env", "e", nil, "dotenv files to load (default .env)")
	exportCmd.Flags().StringVarP(&outDir, "out", "o", "dist", "output directory")
	rootCmd.AddCommand(serveCmd, exportCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("pubsite exited", slog.Any("error", err))
		os.Exit(1)
	}
}
