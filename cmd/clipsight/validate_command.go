package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipsight/internal/logging"
	"clipsight/internal/report"
	"clipsight/internal/timeline"
	"clipsight/internal/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var strict bool
	var jsonOut bool
	var save bool

	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>",
		Short: "Validate unified analysis documents",
		Long: `Validate one document, or every *.json document under a directory.
Directory runs acquire the report-store lock so concurrent batch runs do not
interleave their writes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := ctx.newValidator(strict)
			if err != nil {
				return err
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat %s: %w", args[0], err)
			}
			if info.IsDir() {
				return runBatchValidate(cmd, ctx, validator, args[0], jsonOut, save)
			}
			return runSingleValidate(cmd, ctx, validator, args[0], jsonOut, save)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on the first structural defect")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the full report as JSON")
	cmd.Flags().BoolVar(&save, "save", true, "Store the run in the report database")
	return cmd
}

func runSingleValidate(cmd *cobra.Command, ctx *commandContext, validator *validation.Validator, path string, jsonOut, save bool) error {
	doc, err := timeline.Load(path)
	if err != nil {
		return err
	}
	rep, validateErr := validator.ValidateDocument(doc)

	if save {
		if err := saveRun(cmd, ctx, doc.VideoID, path, validator.Mode().String(), rep); err != nil {
			return err
		}
	}

	if jsonOut {
		if err := writeJSON(cmd, rep); err != nil {
			return err
		}
	} else {
		printReport(cmd, path, rep)
	}
	return validateErr
}

func runBatchValidate(cmd *cobra.Command, ctx *commandContext, validator *validation.Validator, dir string, jsonOut, save bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(cfg.Paths.ReportDB + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire batch lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another clipsight batch run holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	paths, err := collectDocuments(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no *.json documents under %s", dir)
	}

	var store *report.Store
	if save {
		store, err = ctx.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
	}

	logger := logging.NewComponentLogger(ctx.ensureLogger(), "batch-validate")
	type result struct {
		Path   string             `json:"path"`
		Report *validation.Report `json:"report"`
	}
	results := make([]result, 0, len(paths))
	reports := make([]*validation.Report, 0, len(paths))

	for _, path := range paths {
		doc, err := timeline.Load(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable document", "document_unreadable",
				logging.String("path", path), logging.Error(err))
			results = append(results, result{Path: path, Report: &validation.Report{
				Structure: []string{fmt.Sprintf("unreadable document: %v", err)},
			}})
			reports = append(reports, results[len(results)-1].Report)
			continue
		}
		// Batch runs always collect; strictness only affects the exit code.
		rep, _ := validator.ValidateDocument(doc)
		results = append(results, result{Path: path, Report: rep})
		reports = append(reports, rep)
		if save {
			if _, err := store.SaveValidation(cmd.Context(), doc.VideoID, path, validator.Mode().String(), rep); err != nil {
				return err
			}
		}
	}

	summary := validation.Summarize(reports)
	if jsonOut {
		return writeJSON(cmd, map[string]any{"results": results, "summary": summary})
	}

	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			filepath.Base(res.Path),
			res.Report.VideoID,
			passFail(res.Report.Clean()),
			strconv.Itoa(res.Report.IssueCount()),
		})
	}
	if stdoutIsTerminal() {
		fmt.Fprintln(out, renderTable(
			[]string{"Document", "Video", "Status", "Issues"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
	} else {
		for _, row := range rows {
			fmt.Fprintln(out, strings.Join(row, "\t"))
		}
	}
	fmt.Fprintf(out, "%d documents: %d passed, %d failed\n", summary.Total, summary.Passed, summary.Failed)

	if validator.Mode() == validation.Strict && summary.Failed > 0 {
		return fmt.Errorf("%d documents failed validation", summary.Failed)
	}
	return nil
}

func saveRun(cmd *cobra.Command, ctx *commandContext, videoID, path, mode string, rep *validation.Report) error {
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := store.SaveValidation(cmd.Context(), videoID, path, mode, rep); err != nil {
		return err
	}
	return nil
}

func printReport(cmd *cobra.Command, path string, rep *validation.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s (%d issues)\n", path, passFail(rep.Clean()), rep.IssueCount())
	for _, issue := range rep.Issues() {
		fmt.Fprintf(out, "  - %s\n", issue)
	}
}

func collectDocuments(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
