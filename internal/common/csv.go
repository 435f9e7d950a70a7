// Package common provides CSV import and export shared by the CLI commands.
package common

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter is used when no delimiter is configured.
const DefaultDelimiter = ','

// TransactionRow is one row of a transaction CSV file. Amount stays textual so
// that validation happens in one place, the transaction parser.
type TransactionRow struct {
	Date        string `csv:"Date" json:"date"`
	Description string `csv:"Description" json:"description"`
	Amount      string `csv:"Amount" json:"amount"`
}

// Delimiter returns the first rune of s, or DefaultDelimiter when s is empty.
func Delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return DefaultDelimiter
}

// ReadTransactionRows reads a headed CSV (Date, Description, Amount; extra
// columns such as Category are ignored).
func ReadTransactionRows(r io.Reader, delimiter rune) ([]TransactionRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true

	var rows []TransactionRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// ReadTransactionFile reads a transaction CSV file and returns its rows as a
// JSON record array, the shape accepted by the transaction parser.
func ReadTransactionFile(filePath string, delimiter rune, logger logging.Logger) (json.RawMessage, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger.Info("Reading CSV file", logging.F(logging.FieldInputFile, filePath))

	file, err := os.Open(filePath) // #nosec G304 -- path is supplied by the CLI user
	if err != nil {
		logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	rows, err := ReadTransactionRows(file, delimiter)
	if err != nil {
		logger.WithError(err).Error("Failed to parse CSV file")
		return nil, err
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("error encoding CSV rows: %w", err)
	}

	logger.Info("Successfully read CSV data", logging.F(logging.FieldCount, len(rows)))
	return data, nil
}

// WriteCategorizedCSV writes rows with a header line to w.
func WriteCategorizedCSV(w io.Writer, rows []models.CategorizedTransaction, delimiter rune) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ExportCategorizedCSV writes rows to csvFile, creating its directory if needed.
func ExportCategorizedCSV(rows []models.CategorizedTransaction, csvFile string, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(rows)))

	if err := os.MkdirAll(filepath.Dir(csvFile), 0750); err != nil {
		logger.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(csvFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionReportFile) // #nosec G304
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteCategorizedCSV(file, rows, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	logger.Info("Successfully wrote transactions to CSV file",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
