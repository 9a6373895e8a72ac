package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ventas/internal/core"
	ports "ventas/internal/dataset"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var _ ports.Source = (*SQLiteRepository)(nil)

// ImportBatch records one replacement of the stored dataset.
type ImportBatch struct {
	BatchID     string
	Source      string
	Salespeople int
	Lines       int
	ImportedAt  time.Time
}

// Stats summarizes the stored dataset.
type Stats struct {
	Salespeople int
	Lines       int
	LastImport  *ImportBatch
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string {
	return "sqlite:" + r.path
}

const insertLine = `INSERT INTO invoice_lines (
	salesperson, position, numero_factura, cliente, fecha, referencia,
	referencia_producto, nombre_producto, cantidad, precio_unitario, subtotal,
	divisa, unidad_medida, categoria_producto, modelo, tipo_producto,
	oportunidad_refacciones
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Replace swaps the stored dataset for d in one transaction and records the
// import batch.
func (r *SQLiteRepository) Replace(ctx context.Context, batchID, source string, d *core.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_lines`); err != nil {
		return fmt.Errorf("clear invoice lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM salespeople`); err != nil {
		return fmt.Errorf("clear salespeople: %w", err)
	}

	for i, name := range d.Salespeople() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO salespeople (name, position) VALUES (?, ?)`, name, i); err != nil {
			return fmt.Errorf("insert salesperson %q: %w", name, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertLine)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range d.All() {
		_, err := stmt.ExecContext(ctx,
			l.Owner, l.Position, l.InvoiceNumber, l.Client, l.Date, l.Reference,
			l.ProductReference, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal,
			l.Currency, l.Unit, l.Category, l.Model, l.ProductType,
			l.Opportunity)
		if err != nil {
			return fmt.Errorf("insert line %s/%d: %w", l.Owner, l.Position, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_batches (batch_id, source, salespeople, lines, imported_at) VALUES (?, ?, ?, ?, ?)`,
		batchID, source, len(d.Salespeople()), d.Len(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record import batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Dataset stored in SQLite",
		"batch_id", batchID,
		"source", source,
		"salespeople", len(d.Salespeople()),
		"lines", d.Len())
	return nil
}

// Load implements dataset.Source
func (r *SQLiteRepository) Load(ctx context.Context) (*core.Dataset, error) {
	b := core.NewBuilder()

	names, err := r.db.QueryContext(ctx, `SELECT name FROM salespeople ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query salespeople: %w", err)
	}
	defer names.Close()
	for names.Next() {
		var name string
		if err := names.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan salesperson: %w", err)
		}
		b.Add(name)
	}
	if err := names.Err(); err != nil {
		return nil, fmt.Errorf("iterate salespeople: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT l.salesperson, l.numero_factura, l.cliente, l.fecha, l.referencia,
		       l.referencia_producto, l.nombre_producto, l.cantidad, l.precio_unitario,
		       l.subtotal, l.divisa, l.unidad_medida, l.categoria_producto, l.modelo,
		       l.tipo_producto, l.oportunidad_refacciones
		FROM invoice_lines l
		JOIN salespeople s ON s.name = l.salesperson
		ORDER BY s.position, l.position`)
	if err != nil {
		return nil, fmt.Errorf("query invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner string
		var l core.InvoiceLine
		err := rows.Scan(&owner, &l.InvoiceNumber, &l.Client, &l.Date, &l.Reference,
			&l.ProductReference, &l.ProductName, &l.Quantity, &l.UnitPrice,
			&l.Subtotal, &l.Currency, &l.Unit, &l.Category, &l.Model,
			&l.ProductType, &l.Opportunity)
		if err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		b.Add(owner, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice lines: %w", err)
	}

	return b.Build(), nil
}

// LastImport returns the most recent import batch, or nil when nothing has
// been imported.
func (r *SQLiteRepository) LastImport(ctx context.Context) (*ImportBatch, error) {
	var b ImportBatch
	err := r.db.QueryRowContext(ctx, `
		SELECT batch_id, source, salespeople, lines, imported_at
		FROM import_batches
		ORDER BY imported_at DESC, rowid DESC
		LIMIT 1`).Scan(&b.BatchID, &b.Source, &b.Salespeople, &b.Lines, &b.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last import: %w", err)
	}
	return &b, nil
}

// GetStats counts the stored salespeople and lines.
func (r *SQLiteRepository) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM salespeople`).Scan(&s.Salespeople); err != nil {
		return s, fmt.Errorf("count salespeople: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoice_lines`).Scan(&s.Lines); err != nil {
		return s, fmt.Errorf("count invoice lines: %w", err)
	}
	last, err := r.LastImport(ctx)
	if err != nil {
		return s, err
	}
	s.LastImport = last
	return s, nil
}
