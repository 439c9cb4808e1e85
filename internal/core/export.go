package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNothingToExport signals an empty filtered view. Callers surface it as a
// user-facing notice instead of producing a zero-byte file.
var ErrNothingToExport = errors.New("nothing to export")

// csvHeader is fixed by the export contract; the column names are not
// localized or configurable.
const csvHeader = "Tanggal,Industri,Kabupaten,Kondisi,Kendala,Catatan Pembinaan"

// ExportCSV renders the already-filtered chronological view as CSV. Every
// data field is quote-wrapped with embedded quotes doubled; lines are joined
// with \n. The header line stays unquoted.
//
// encoding/csv is deliberately not used here: it quotes fields only when
// required and terminates lines with \r\n, while this format is a strict
// bit-level contract.
func ExportCSV(entries []HistoryEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	for _, e := range entries {
		b.WriteByte('\n')
		fields := [...]string{
			e.Entry.VisitDate,
			e.Record.BusinessName,
			string(e.Record.Regency),
			e.Entry.Condition,
			e.Entry.Issue,
			e.Entry.Note,
		}
		for i, field := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String(), nil
}

// ExportFilename returns the download name for an export taken at the given
// instant: rekap-pembinaan-<YYYY-MM-DD>.csv.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("rekap-pembinaan-%s.csv", now.Format("2006-01-02"))
}
