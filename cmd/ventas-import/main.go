package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	urfave "github.com/urfave/cli/v2"

	"ventas/internal/amqp"
	"ventas/internal/cli"
	"ventas/internal/core"
	"ventas/internal/dataset"
	"ventas/internal/dataset/google"
	"ventas/internal/dataset/jsonfile"
	"ventas/internal/dataset/xlsxfile"
	"ventas/internal/log"
	"ventas/internal/services"
	"ventas/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLoggerFromEnv()

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	if err := newApp(logger).RunContext(ctx, os.Args); err != nil {
		logger.Error("Command failed", log.FieldError, err.Error())
		code := 1
		var exitErr urfave.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		stop()
		os.Exit(code)
	}
}

func newApp(logger *log.Logger) *urfave.App {
	return &urfave.App{
		Name:  "ventas-import",
		Usage: "load invoice datasets into the SQLite store served by ventas",
		// errors are reported by main, never by os.Exit inside the app
		ExitErrHandler: func(*urfave.Context, error) {},
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path",
				Value:   "./data/ventas.db",
				EnvVars: []string{"SQLITE_DB_PATH"},
			},
			&urfave.BoolFlag{
				Name:  "notify",
				Usage: "publish a dataset imported message so running servers reload",
			},
			&urfave.StringFlag{
				Name:    "amqp-url",
				Usage:   "AMQP broker URL used by --notify",
				EnvVars: []string{"AMQP_URL"},
			},
			&urfave.StringFlag{
				Name:    "amqp-exchange",
				Value:   "ventas",
				EnvVars: []string{"AMQP_EXCHANGE"},
			},
			&urfave.StringFlag{
				Name:    "amqp-queue",
				Value:   "dataset_imported",
				EnvVars: []string{"AMQP_QUEUE"},
			},
		},
		Commands: []*urfave.Command{
			{
				Name:      "json",
				Usage:     "import a salesperson to invoice lines JSON file",
				ArgsUsage: "<file>",
				Action: func(c *urfave.Context) error {
					path, err := fileArg(c)
					if err != nil {
						return err
					}
					return runImport(c, logger, jsonfile.New(path))
				},
			},
			{
				Name:      "xlsx",
				Usage:     "import an Excel workbook with a vendedor column",
				ArgsUsage: "<file>",
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "sheet", Usage: "sheet to read (default: first sheet)"},
				},
				Action: func(c *urfave.Context) error {
					path, err := fileArg(c)
					if err != nil {
						return err
					}
					return runImport(c, logger, xlsxfile.New(path, c.String("sheet")))
				},
			},
			{
				Name:  "sheets",
				Usage: "import from a Google Sheets spreadsheet",
				Flags: []urfave.Flag{
					&urfave.StringFlag{Name: "spreadsheet-id", EnvVars: []string{"GOOGLE_SPREADSHEET_ID"}, Required: true},
					&urfave.StringFlag{Name: "range", Value: google.DefaultRange, EnvVars: []string{"GOOGLE_SHEET_RANGE"}},
					&urfave.StringFlag{Name: "credentials-file", EnvVars: []string{"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"}},
					&urfave.StringFlag{Name: "credentials-json", EnvVars: []string{"GOOGLE_SERVICE_ACCOUNT_JSON"}},
				},
				Action: func(c *urfave.Context) error {
					src, err := google.New(c.Context, google.Config{
						SpreadsheetID:   c.String("spreadsheet-id"),
						Range:           c.String("range"),
						CredentialsJSON: c.String("credentials-json"),
						CredentialsFile: c.String("credentials-file"),
					})
					if err != nil {
						return err
					}
					return runImport(c, logger, src)
				},
			},
			{
				Name:      "export",
				Usage:     "write the stored dataset to a .json or .xlsx file",
				ArgsUsage: "<file>",
				Action: func(c *urfave.Context) error {
					path, err := fileArg(c)
					if err != nil {
						return err
					}
					return runExport(c, path)
				},
			},
			{
				Name:   "stats",
				Usage:  "print the stored dataset and its dashboard totals",
				Action: runStats,
			},
		},
	}
}

func fileArg(c *urfave.Context) (string, error) {
	if c.NArg() != 1 {
		return "", urfave.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
	}
	return c.Args().First(), nil
}

func openStore(c *urfave.Context) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(c.String("db"))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.String("db"), err)
	}
	return repo, nil
}

func runImport(c *urfave.Context, logger *log.Logger, src dataset.Source) error {
	repo, err := openStore(c)
	if err != nil {
		return err
	}
	defer repo.Close()

	var publisher services.Publisher
	if c.Bool("notify") {
		url := c.String("amqp-url")
		if url == "" {
			return errors.New("--notify requires --amqp-url or AMQP_URL")
		}
		client, err := amqp.NewClient(url, c.String("amqp-exchange"), c.String("amqp-queue"))
		if err != nil {
			return fmt.Errorf("connect to AMQP: %w", err)
		}
		defer client.Close()
		publisher = client
	}

	res, err := services.NewImportService(repo, publisher, logger).Import(c.Context, src)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Imported %d lines for %d salespeople from %s\n", res.Lines, res.Salespeople, res.Source)
	fmt.Fprintf(w, "Batch: %s\n", res.BatchID)
	if c.Bool("notify") {
		if res.Notified {
			fmt.Fprintln(w, "Notification published")
		} else {
			fmt.Fprintln(w, "Notification failed; running servers will not reload until their next trigger")
		}
	}
	return nil
}

func runExport(c *urfave.Context, path string) error {
	repo, err := openStore(c)
	if err != nil {
		return err
	}
	defer repo.Close()

	d, err := repo.Load(c.Context)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = jsonfile.Write(path, d)
	case ".xlsx":
		err = writeXLSX(path, d)
	default:
		return urfave.Exit("export file must end in .json or .xlsx", 2)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Exported %d lines for %d salespeople to %s\n", d.Len(), len(d.Salespeople()), path)
	return nil
}

func writeXLSX(path string, d *core.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := xlsxfile.Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runStats(c *urfave.Context) error {
	repo, err := openStore(c)
	if err != nil {
		return err
	}
	defer repo.Close()

	stats, err := repo.GetStats(c.Context)
	if err != nil {
		return err
	}
	d, err := repo.Load(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Database: %s\n", c.String("db"))
	fmt.Fprintf(w, "Salespeople: %d\n", stats.Salespeople)
	fmt.Fprintf(w, "Lines: %d\n", stats.Lines)
	if last := stats.LastImport; last != nil {
		fmt.Fprintf(w, "Last import: %s from %s at %s\n", last.BatchID, last.Source, last.ImportedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintln(w, "Last import: never")
	}

	fmt.Fprintln(w)
	for _, tile := range core.Summarize(d.All()).Tiles() {
		fmt.Fprintf(w, "%-34s %s\n", tile.Label+":", tile.Value)
	}
	return nil
}
