package epidemic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/epivet/epivet-go/internal/errors"
)

// csvHeader is the fixed column order of the exported table.
const csvHeader = "Day,Susceptible,Infected,Recovered\n"

// WriteCSV writes the result to the given destination in CSV format with a
// fixed column order.
func (r Result) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, csvHeader); err != nil {
		return fmt.Errorf("failed to write header to CSV: %w", err)
	}

	for _, record := range r {
		line := fmt.Sprintf("%d,%.6f,%.6f,%.6f\n",
			record.Day, record.Susceptible, record.Infected, record.Recovered)
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write record to CSV: %w", err)
		}
	}

	return nil
}

// WriteTable writes the result as a tab-separated table, suitable for
// terminal output.
func (r Result) WriteTable(w io.Writer) error {
	header := "Day\tSusceptible\tInfected\tRecovered\n"
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range r {
		line := fmt.Sprintf("%d\t%.1f\t%.1f\t%.1f\n",
			record.Day, record.Susceptible, record.Infected, record.Recovered)
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// ParseCSV reads a table previously produced by WriteCSV back into a Result.
func ParseCSV(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Newf("failed to parse simulation CSV: %w", err).
			Category(errors.CategoryResponseParsing).
			Component("epidemic").
			Build()
	}
	if len(rows) == 0 {
		return nil, errors.Newf("simulation CSV is empty").
			Category(errors.CategoryResponseParsing).
			Component("epidemic").
			Build()
	}

	// Skip the header row.
	result := make(Result, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 4 {
			return nil, errors.Newf("simulation CSV row %d has %d columns, want 4", i+1, len(row)).
				Category(errors.CategoryResponseParsing).
				Context("row", i+1).
				Component("epidemic").
				Build()
		}

		day, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, parseFieldError(i+1, "Day", err)
		}
		susceptible, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, parseFieldError(i+1, "Susceptible", err)
		}
		infected, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, parseFieldError(i+1, "Infected", err)
		}
		recovered, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, parseFieldError(i+1, "Recovered", err)
		}

		result = append(result, DayRecord{
			Day:         day,
			Susceptible: susceptible,
			Infected:    infected,
			Recovered:   recovered,
		})
	}

	return result, nil
}

func parseFieldError(row int, field string, err error) error {
	return errors.Newf("simulation CSV row %d: bad %s value: %w", row, field, err).
		Category(errors.CategoryResponseParsing).
		Context("row", row).
		Context("field", field).
		Component("epidemic").
		Build()
}
