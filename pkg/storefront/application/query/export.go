package query

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
)

const (
	OrdersReport    = "orders"
	CustomersReport = "customers"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a report ready to be written in any export format.
type Table struct {
	Type        string
	GeneratedAt time.Time
	Header      []string
	Records     [][]string
}

func (t Table) Filename() string {
	return t.Type + "-" + t.GeneratedAt.UTC().Format("20060102-150405") + ".csv"
}

// WriteCSV writes the table with a UTF-8 byte order mark so spreadsheets pick the right encoding.
func WriteCSV(w io.Writer, table Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return errors.WithStack(err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return errors.WithStack(err)
	}
	if err := writer.WriteAll(table.Records); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

type envelope struct {
	Type        string              `json:"type"`
	GeneratedAt time.Time           `json:"generated_at"`
	Count       int                 `json:"count"`
	Columns     []string            `json:"columns"`
	Rows        []map[string]string `json:"rows"`
}

// WriteJSONEnvelope writes the same cells as WriteCSV, one object per record keyed by column.
// Columns carries the CSV column order, which JSON objects do not keep.
func WriteJSONEnvelope(w io.Writer, table Table) error {
	rows := make([]map[string]string, 0, len(table.Records))
	for _, record := range table.Records {
		row := make(map[string]string, len(table.Header))
		for i, column := range table.Header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}

	return errors.WithStack(json.NewEncoder(w).Encode(envelope{
		Type:        table.Type,
		GeneratedAt: table.GeneratedAt.UTC(),
		Count:       len(rows),
		Columns:     table.Header,
		Rows:        rows,
	}))
}

type ReportService interface {
	Report(ctx context.Context, reportType string) (*Table, error)
}

var ErrUnknownReport = errors.New("unknown report")

func NewReportService(queries ReportQueryService, now func() time.Time) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{queries: queries, now: now}
}

type reportService struct {
	queries ReportQueryService
	now     func() time.Time
}

func (s *reportService) Report(ctx context.Context, reportType string) (*Table, error) {
	table := &Table{Type: reportType, GeneratedAt: s.now()}

	switch reportType {
	case OrdersReport:
		rows, err := s.queries.OrderRows(ctx)
		if err != nil {
			return nil, err
		}
		table.Header = orderReportHeader
		table.Records = make([][]string, 0, len(rows))
		for _, row := range rows {
			table.Records = append(table.Records, row.Record())
		}
	case CustomersReport:
		rows, err := s.queries.CustomerRows(ctx)
		if err != nil {
			return nil, err
		}
		table.Header = customerReportHeader
		table.Records = make([][]string, 0, len(rows))
		for _, row := range rows {
			table.Records = append(table.Records, row.Record())
		}
	default:
		return nil, errors.Wrap(ErrUnknownReport, reportType)
	}
	return table, nil
}
