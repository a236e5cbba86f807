package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	petrdlog "github.com/nao1215/petrd/internal/log"
)

// NewRootCmd creates the root command for petrd.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petrd",
		Short: "Unpack and validate PET raw data stored in DICOM files",
		Long: `petrd extracts raw PET data from the DICOM containers written by
Siemens Biograph mMR and GE PET scanners.

Siemens list mode, sinogram and normalization files are unpacked into the raw
payload (.l, .s, .n) plus its Interfile header (.hdr). Payloads that were too
large for the DICOM file are read from the .bf file next to it. GE files are
unpacked into their RDF payload.

Every payload is checked against the size its header announces before it is
written.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "verbose")
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	return getBoolFlag(cmd, "log-json")
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the stderr logger. Patient identifiers are masked even
// in verbose mode.
func setupLogger(verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return petrdlog.NewJSONLogger(os.Stderr, verbose)
	}
	return petrdlog.NewLogger(os.Stderr, verbose)
}
