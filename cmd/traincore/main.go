// Command traincore drives the training records core from the shell:
// bulk imports from xlsx workbooks, template generation, and snapshot
// backup/restore against the configured archive. Storage and archive
// backends are selected through the TRAINCORE_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"traincore/internal/archive"
	"traincore/internal/core"
	"traincore/internal/importer"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// expvar names are process-global, so the recorder is created once even
// when run is invoked repeatedly in tests.
var metrics = core.NewExpvarMetricsRecorder("traincore_cli")

func usage(stderr io.Writer) {
	fmt.Fprintln(stderr, `usage: traincore <command> [args]

commands:
  import <employees|courses|history> <file.xlsx>   bulk-import a workbook
  template <employees|courses|history> [out.xlsx]  write an upload template
  export                                           archive a snapshot backup
  backups                                          list archived backups
  restore <key>                                    restore from a backup`)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	ctx := context.Background()

	if args[0] == "template" {
		// Template generation needs no store at all.
		return runTemplate(args[1:], stdout, stderr)
	}

	storage, err := core.OpenSnapshotStorage()
	if err != nil {
		logger.Error("open storage", "error", err)
		return 1
	}
	store, err := core.NewStore(ctx, storage, core.WithLogger(core.NewSlogLogger(logger)))
	if err != nil {
		logger.Error("open store", "error", err)
		return 1
	}
	svc := core.NewService(store, core.WithMetrics(metrics))

	switch args[0] {
	case "import":
		return runImport(ctx, args[1:], svc, stdout, stderr)
	case "export":
		return runExport(ctx, store, stdout, stderr)
	case "backups":
		return runBackups(ctx, store, stdout, stderr)
	case "restore":
		return runRestore(ctx, args[1:], store, stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func runImport(ctx context.Context, args []string, svc *core.Service, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		fmt.Fprintln(stderr, "usage: traincore import <employees|courses|history> <file.xlsx>")
		return 2
	}
	kind := importer.Kind(fs.Arg(0))
	payload, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(stderr, "read workbook: %v\n", err)
		return 1
	}
	rows, err := importer.ReadWorkbook(payload)
	if err != nil {
		fmt.Fprintf(stderr, "parse workbook: %v\n", err)
		return 1
	}
	errs, err := importer.NewMapper(svc).Import(ctx, kind, rows)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	for _, rowErr := range errs {
		fmt.Fprintln(stdout, rowErr)
	}
	fmt.Fprintf(stdout, "%d rows processed, %d errors\n", len(rows), len(errs))
	if len(errs) > 0 {
		return 1
	}
	return 0
}

func runTemplate(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: traincore template <employees|courses|history> [out.xlsx]")
		return 2
	}
	payload, filename, err := importer.WriteTemplate(importer.Kind(args[0]))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if len(args) > 1 {
		filename = args[1]
	}
	if err := os.WriteFile(filename, payload, 0o644); err != nil {
		fmt.Fprintf(stderr, "write template: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "wrote %s\n", filename)
	return 0
}

func runExport(ctx context.Context, store *core.Store, stdout, stderr io.Writer) int {
	dst, err := archive.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open archive: %v\n", err)
		return 1
	}
	info, err := store.ExportToArchive(ctx, dst)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "archived %s (%d bytes)\n", info.Key, info.Size)
	return 0
}

func runBackups(ctx context.Context, store *core.Store, stdout, stderr io.Writer) int {
	src, err := archive.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open archive: %v\n", err)
		return 1
	}
	backups, err := store.ListBackups(ctx, src)
	if err != nil {
		fmt.Fprintf(stderr, "list backups: %v\n", err)
		return 1
	}
	for _, info := range backups {
		fmt.Fprintf(stdout, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(stdout, "%d backups\n", len(backups))
	return 0
}

func runRestore(ctx context.Context, args []string, store *core.Store, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: traincore restore <key>")
		return 2
	}
	src, err := archive.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "open archive: %v\n", err)
		return 1
	}
	if err := store.RestoreFromArchive(ctx, src, args[0]); err != nil {
		fmt.Fprintf(stderr, "restore: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "restored %s\n", args[0])
	return 0
}
