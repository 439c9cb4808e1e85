package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"simonbin/pkg/domain"
)

func TestExportCSVEmptyView(t *testing.T) {
	if _, err := ExportCSV(nil); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestExportCSVFormat(t *testing.T) {
	records := []domain.IndustryRecord{
		recordWithHistory("a", "UD Jati Makmur", domain.RegencyPacitan,
			domain.CoachingRecord{
				ID:        "e1",
				VisitDate: "2024-03-01",
				Note:      "Pembinaan rutin",
				Issue:     "Stok bahan baku",
				Condition: domain.ConditionActive,
			},
			domain.CoachingRecord{
				ID:        "e2",
				VisitDate: "2024-01-10",
				Note:      `He said "stop"`,
				Issue:     "kendala, dengan koma",
				Condition: "Tutup sementara",
			},
		),
	}

	out, err := ExportCSV(FlattenHistory(records))
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Tanggal,Industri,Kabupaten,Kondisi,Kendala,Catatan Pembinaan" {
		t.Fatalf("header mismatch: %q", lines[0])
	}
	if lines[1] != `"2024-03-01","UD Jati Makmur","Pacitan","Active","Stok bahan baku","Pembinaan rutin"` {
		t.Fatalf("row 1 mismatch: %q", lines[1])
	}
	if lines[2] != `"2024-01-10","UD Jati Makmur","Pacitan","Tutup sementara","kendala, dengan koma","He said ""stop"""` {
		t.Fatalf("row 2 mismatch: %q", lines[2])
	}
	if strings.Contains(out, "\r") {
		t.Fatalf("rows must be joined with bare newlines")
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatalf("no trailing newline expected")
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 4, 5, 0, time.Local)
	if got := ExportFilename(now); got != "rekap-pembinaan-2024-03-07.csv" {
		t.Fatalf("filename = %q", got)
	}
}
