package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/petrd/internal/config"
	"github.com/nao1215/petrd/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Show previous extractions of a file",
		Long: `History shows what earlier extraction runs recorded for a source file:
when it was processed, its kind, the verdict, the outputs and the SHA3-256
digest of the payload.

Examples:
  # All recorded runs for a file, newest first
  petrd history scan.dcm

  # Only the latest record
  petrd history --latest scan.dcm

  # List every file in the history database
  petrd history --list-sources

  # Every file processed by one run
  petrd history --run 3f2a9c1e-7d4b-4e8a-9c1f-2b6d8e0a4f17

  # Machine readable output
  petrd history --json scan.dcm`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sources", "L", false,
		"List all source files in the history database")
	cmd.Flags().BoolP("latest", "l", false,
		"Show only the latest record")
	cmd.Flags().StringP("run", "r", "",
		"Show every file processed by the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String(config.FlagHistoryDir, "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	dir         string
	source      string
	runID       string
	listSources bool
	latest      bool
	json        bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var (
		opts historyOptions
		err  error
	)
	if opts.listSources, err = cmd.Flags().GetBool("list-sources"); err != nil {
		return err
	}
	if opts.latest, err = cmd.Flags().GetBool("latest"); err != nil {
		return err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.runID, err = cmd.Flags().GetString("run"); err != nil {
		return err
	}
	if opts.dir, err = cmd.Flags().GetString(config.FlagHistoryDir); err != nil {
		return err
	}
	if opts.dir == "" {
		opts.dir = config.XDGDataDir()
	}

	// Validate arguments before opening the database.
	if !opts.listSources && opts.runID == "" {
		if len(args) == 0 {
			return errors.New("source file is required (use --list-sources to see recorded files)")
		}
		if opts.source, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("invalid source path: %w", err)
		}
	}

	return runHistory(cmd, opts)
}

func runHistory(cmd *cobra.Command, opts historyOptions) error {
	db, err := database.Open(opts.dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.listSources {
		sources, err := db.ListSources(ctx)
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(out, sources)
		}
		if len(sources) == 0 {
			fmt.Fprintln(out, "No files recorded.")
			return nil
		}
		for _, s := range sources {
			fmt.Fprintln(out, s)
		}
		return nil
	}

	if opts.runID != "" {
		records, err := db.RunRecords(ctx, opts.runID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no records for run %s", opts.runID)
		}
		if opts.json {
			return writeJSON(out, records)
		}
		return writeHistoryTable(out, "Run "+opts.runID, records, true)
	}

	var records []database.Record
	if opts.latest {
		rec, err := db.Latest(ctx, opts.source)
		if err != nil {
			return err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	} else {
		records, err = db.History(ctx, opts.source)
		if err != nil {
			return err
		}
	}

	if len(records) == 0 {
		return fmt.Errorf("no history for %s", opts.source)
	}
	if opts.json {
		return writeJSON(out, records)
	}
	return writeHistoryTable(out, "History for "+opts.source, records, false)
}

// writeHistoryTable prints records as an aligned table. withSource adds the
// source column for listings that span several files.
func writeHistoryTable(out io.Writer, title string, records []database.Record, withSource bool) error {
	fmt.Fprintf(out, "%s\n\n", title)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if withSource {
		fmt.Fprint(tw, "SOURCE\t")
	}
	fmt.Fprintln(tw, "TIME\tRUN\tKIND\tSTATUS\tBYTES\tPAYLOAD\tSHA3-256")
	for _, r := range records {
		o := r.Outcome
		status := "ok"
		if !o.Succeeded() {
			status = o.ErrorClass
		}
		digest := o.PayloadDigest
		if len(digest) > 16 {
			digest = digest[:16]
		}
		if withSource {
			fmt.Fprintf(tw, "%s\t", o.Source)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortID(o.RunID),
			o.Kind,
			status,
			o.PayloadBytes,
			orDash(o.PayloadPath),
			orDash(digest),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
