package models

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Developer tooling, reachable from main through environment switches.

GENERATE_MODELS=true        migrates every model, prints the column report and
                            writes typed query helpers to ./query
GENERATE_COLUMN_REPORT=true prints the column report only

The column report lists, per table, columns present in the database but not
mapped by the Go model, and model fields whose column is missing.
*/

func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			LogLevel: logger.Info,
			Colorful: true,
		},
	)
	migrateDB := db.Session(&gorm.Session{
		Logger:                 verbose,
		SkipDefaultTransaction: true,
	})

	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}

	if _, err := GenerateColumnMismatchReport(db, os.Stdout); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./query",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)
	g.Execute()
	return nil
}

// ColumnMismatch describes one table whose columns and model fields disagree.
type ColumnMismatch struct {
	Table           string
	UnmappedColumns []string
	MissingColumns  []string
}

// GenerateColumnMismatchReport compares every model with its table and writes a report to out.
func GenerateColumnMismatchReport(db *gorm.DB, out io.Writer) ([]ColumnMismatch, error) {
	fmt.Fprintln(out, "=== COLUMN MISMATCH REPORT ===")

	var report []ColumnMismatch
	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		fmt.Fprintf(out, "\n--- Table: %s ---\n", table)
		if !db.Migrator().HasTable(model) {
			fmt.Fprintln(out, "Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}
		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		var modelColumns []string
		for _, field := range stmt.Schema.Fields {
			if field.DBName != "" && !field.IgnoreMigration {
				modelColumns = append(modelColumns, field.DBName)
			}
		}

		mismatch := findColumnMismatches(table, dbColumns, modelColumns)
		if len(mismatch.UnmappedColumns) == 0 && len(mismatch.MissingColumns) == 0 {
			fmt.Fprintln(out, "All columns are accounted for in the model.")
			continue
		}
		if len(mismatch.UnmappedColumns) > 0 {
			fmt.Fprintf(out, "Columns not mapped by the model: %s\n", strings.Join(mismatch.UnmappedColumns, ", "))
		}
		if len(mismatch.MissingColumns) > 0 {
			fmt.Fprintf(out, "Model fields without a column: %s\n", strings.Join(mismatch.MissingColumns, ", "))
		}
		report = append(report, mismatch)
	}

	fmt.Fprintf(out, "\n=== SUMMARY ===\nTables with mismatches: %d\n", len(report))
	return report, nil
}

func findColumnMismatches(table string, dbColumns, modelColumns []string) ColumnMismatch {
	inDB := make(map[string]bool, len(dbColumns))
	for _, c := range dbColumns {
		inDB[c] = true
	}
	inModel := make(map[string]bool, len(modelColumns))
	for _, c := range modelColumns {
		inModel[c] = true
	}

	m := ColumnMismatch{Table: table}
	for _, c := range dbColumns {
		if !inModel[c] {
			m.UnmappedColumns = append(m.UnmappedColumns, c)
		}
	}
	for _, c := range modelColumns {
		if !inDB[c] {
			m.MissingColumns = append(m.MissingColumns, c)
		}
	}
	sort.Strings(m.UnmappedColumns)
	sort.Strings(m.MissingColumns)
	return m
}
