package roster_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
)

var fixedNow = func() time.Time { return time.Date(2025, 9, 12, 20, 0, 0, 0, time.UTC) }

func TestExport_OneLinePerRowPlusHeader(t *testing.T) {
	rows := roster.Roster{
		{Token: "T1", Name: "Asha", Phone: "1", College: "RV", Course: "BCA", RegistrationDate: models.At(fixedNow())},
		{Token: "T2", Name: "Kiran", Phone: "2", College: "BMS", Course: "BSc", RegistrationDate: models.At(fixedNow())},
		{Token: "T3", Name: "Ravi", Phone: "3", College: "Christ", Course: "BCom", RegistrationDate: models.At(fixedNow())},
	}
	art, err := roster.Exporter{Now: fixedNow}.Export(models.Event{ID: "coding", Title: "Coding (C)"}, rows)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(string(art.Body), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("got %d lines, want %d", len(lines), len(rows)+1)
	}
	if lines[0] != "#,Name,Phone,College,Course,Token,Registration Date" {
		t.Errorf("header: got %q", lines[0])
	}
	for i, line := range lines[1:] {
		want := []string{"1,", "2,", "3,"}[i]
		if !strings.HasPrefix(line, want) {
			t.Errorf("line %d: got %q, want prefix %q", i+1, line, want)
		}
	}
	if strings.HasSuffix(string(art.Body), "\n") {
		t.Errorf("body should not end with a newline")
	}
	if art.Rows != 3 {
		t.Errorf("Rows: got %d, want 3", art.Rows)
	}
	if art.ContentType != "text/csv; charset=utf-8" {
		t.Errorf("ContentType: got %q", art.ContentType)
	}
}

func TestExport_EmptyRosterProducesNothing(t *testing.T) {
	art, err := roster.Exporter{}.Export(models.Event{ID: "coding", Title: "Coding (C)"}, nil)
	if !errors.Is(err, roster.ErrNothingToExport) {
		t.Fatalf("got err %v, want ErrNothingToExport", err)
	}
	if art.Body != nil || art.Filename != "" {
		t.Errorf("expected no artifact, got %+v", art)
	}
}

func TestExport_QuotesAndDefaults(t *testing.T) {
	rows := roster.Roster{{
		Token:    "T1",
		Username: "asha_r",
		College:  `St. "Joseph's", Bengaluru`,
	}}
	var b strings.Builder
	if err := (roster.Exporter{}).WriteCSV(&b, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	lines := strings.Split(b.String(), "\n")
	want := `1,"asha_r","N/A","St. ""Joseph's"", Bengaluru","N/A","T1","N/A"`
	if lines[1] != want {
		t.Errorf("row:\n got %s\nwant %s", lines[1], want)
	}
}

func TestExporter_FormatTimestamp(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	e := roster.Exporter{Location: ist}
	cases := []struct {
		name string
		ts   models.Timestamp
		want string
	}{
		{"valid", models.At(time.Date(2025, 9, 10, 14, 30, 0, 0, time.UTC)), "9/10/2025 8:00:00 PM"},
		{"absent", models.Timestamp{}, roster.NotAvailable},
		{"malformed", models.Malformed(), roster.InvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.FormatTimestamp(tc.ts); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExport_RegistrationDateFallsBackToUserCreatedAt(t *testing.T) {
	created := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	rows := roster.Roster{{Token: "T1", Name: "Asha", CreatedAt: models.At(created)}}
	var b strings.Builder
	if err := (roster.Exporter{}).WriteCSV(&b, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if !strings.HasSuffix(b.String(), `"9/1/2025 9:00:00 AM"`) {
		t.Errorf("got %q", b.String())
	}
}

func TestFilename(t *testing.T) {
	day := time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"Coding (C)":     "Coding--C--participants-2025-09-12.csv",
		"Treasure Hunt":  "Treasure-Hunt-participants-2025-09-12.csv",
		"Debugging":      "Debugging-participants-2025-09-12.csv",
		"Quiz & Trivia!": "Quiz---Trivia--participants-2025-09-12.csv",
	}
	for title, want := range cases {
		if got := roster.Filename(title, day); got != want {
			t.Errorf("Filename(%q): got %q, want %q", title, got, want)
		}
	}
}

func TestExport_FilenameUsesExporterClock(t *testing.T) {
	art, err := roster.Exporter{Now: fixedNow}.Export(
		models.Event{ID: "coding", Title: "Coding (C)"},
		roster.Roster{{Token: "T1", Name: "Asha"}},
	)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if art.Filename != "Coding--C--participants-2025-09-12.csv" {
		t.Errorf("Filename: got %q", art.Filename)
	}
}
