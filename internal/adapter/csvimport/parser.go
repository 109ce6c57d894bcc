// Package csvimport parses uploaded bank transfer CSV files into rows the
// import engine accepts. Malformed rows are reported back with their row
// number and never reach the engine as half-formed transfers.
package csvimport

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/width"

	"github.com/simaogato/schoolpay-backend/internal/usecase/importer"
)

var log = logrus.StandardLogger()

// SetLogger allows setting a configured logger
func SetLogger(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	log = logger
}

// csvRow maps the uploaded file's columns. Amounts and dates stay strings
// here; conversion and validation happen per row so one bad cell rejects one
// row, not the file.
type csvRow struct {
	TransferDate  string `csv:"transfer_date"`
	Amount        string `csv:"amount"`
	PayerName     string `csv:"payer_name"`
	PayerNameKana string `csv:"payer_name_kana"`
	BankName      string `csv:"bank_name"`
	BranchName    string `csv:"branch_name"`
	GuardianNo    string `csv:"guardian_no"`
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}

// Payer names frequently carry the customer code the school asked guardians
// to prefix, e.g. "1234 ﾔﾏﾀﾞﾀﾛｳ".
var leadingCodePattern = regexp.MustCompile(`^([0-9]{3,10})[ -]?`)

// ParseFile reads and parses an uploaded CSV file.
func ParseFile(path string) ([]importer.TransferRow, []importer.RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening transfer CSV: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads transfer rows from r. The returned row errors use 1-based row
// numbers counted over data rows, matching what the import result reports.
func Parse(r io.Reader) ([]importer.TransferRow, []importer.RowError, error) {
	var raw []csvRow
	if err := gocsv.Unmarshal(r, &raw); err != nil {
		return nil, nil, fmt.Errorf("error parsing transfer CSV: %w", err)
	}

	rows := make([]importer.TransferRow, 0, len(raw))
	var rowErrs []importer.RowError
	for i, rec := range raw {
		row, err := convertRow(rec)
		if err != nil {
			log.WithFields(logrus.Fields{"row": i + 1, "error": err}).Warn("Rejected transfer row")
			rowErrs = append(rowErrs, importer.RowError{Row: i + 1, Err: err})
			continue
		}
		rows = append(rows, row)
	}

	log.WithFields(logrus.Fields{"accepted": len(rows), "rejected": len(rowErrs)}).Info("Parsed transfer CSV")
	return rows, rowErrs, nil
}

func convertRow(rec csvRow) (importer.TransferRow, error) {
	date, err := parseDate(rec.TransferDate)
	if err != nil {
		return importer.TransferRow{}, err
	}

	amount, err := parseAmount(rec.Amount)
	if err != nil {
		return importer.TransferRow{}, err
	}

	payer, hint := splitGuardianNo(rec.PayerName)
	if rec.GuardianNo != "" {
		hint = strings.TrimSpace(width.Fold.String(rec.GuardianNo))
	}

	return importer.TransferRow{
		TransferDate:     date,
		Amount:           amount,
		PayerName:        payer,
		PayerNameKana:    strings.TrimSpace(rec.PayerNameKana),
		SourceBankName:   strings.TrimSpace(rec.BankName),
		SourceBranchName: strings.TrimSpace(rec.BranchName),
		GuardianNoHint:   hint,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(width.Fold.String(s))
	if v == "" {
		return time.Time{}, fmt.Errorf("transfer_date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("transfer_date %q is not a recognized date", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(width.Fold.String(s))
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimPrefix(v, "¥")
	if v == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	amount, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", s)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}

// splitGuardianNo extracts a leading customer code from the payer name, if
// present, and returns the cleaned name and the code.
func splitGuardianNo(payerName string) (name, code string) {
	folded := strings.TrimSpace(width.Fold.String(payerName))
	m := leadingCodePattern.FindStringSubmatch(folded)
	if m == nil {
		return strings.TrimSpace(payerName), ""
	}
	return strings.TrimSpace(strings.TrimPrefix(folded, m[0])), m[1]
}
