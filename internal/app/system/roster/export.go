package roster

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/eventroster/internal/domain/models"
)

// ErrNothingToExport is returned when the filtered roster is empty. It is an
// informational condition; no artifact is produced.
var ErrNothingToExport = errors.New("no participants to export")

const (
	// NotAvailable fills empty text columns.
	NotAvailable = "N/A"
	// InvalidDate replaces timestamps that could not be decoded.
	InvalidDate = "Invalid Date"
	// DefaultDateLayout renders a date followed by a time of day.
	DefaultDateLayout = "1/2/2006 3:04:05 PM"
)

// ExportHeader is the fixed column order of an export.
var ExportHeader = []string{"#", "Name", "Phone", "College", "Course", "Token", "Registration Date"}

// Artifact is a rendered export ready to be downloaded.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// Exporter renders filtered rosters as CSV. The zero value renders times in
// UTC with DefaultDateLayout.
type Exporter struct {
	Location *time.Location
	Layout   string
	Now      func() time.Time
}

// Export renders rows for ev. It returns ErrNothingToExport when rows is
// empty.
func (e Exporter) Export(ev models.Event, rows Roster) (Artifact, error) {
	if len(rows) == 0 {
		return Artifact{}, ErrNothingToExport
	}
	var buf bytes.Buffer
	if err := e.WriteCSV(&buf, rows); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename:    Filename(ev.Title, e.now().In(e.location())),
		ContentType: "text/csv; charset=utf-8",
		Body:        buf.Bytes(),
		Rows:        len(rows),
	}, nil
}

// WriteCSV writes the header and one line per row, separated by "\n" with no
// trailing newline. Text columns are always quoted; the ordinal is not.
func (e Exporter) WriteCSV(w io.Writer, rows Roster) error {
	var b strings.Builder
	b.WriteString(strings.Join(ExportHeader, ","))
	for i, p := range rows {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(i + 1))
		for _, field := range [...]string{
			p.DisplayName(),
			p.Phone,
			p.College,
			p.Course,
			p.Token,
			e.FormatTimestamp(registrationTime(p)),
		} {
			b.WriteByte(',')
			b.WriteString(quote(orNA(field)))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatTimestamp renders ts as date and time in the exporter's location.
// Absent timestamps render as NotAvailable, malformed ones as InvalidDate.
func (e Exporter) FormatTimestamp(ts models.Timestamp) string {
	switch ts.State {
	case models.TimestampValid:
		return ts.Time.In(e.location()).Format(e.layout())
	case models.TimestampMalformed:
		return InvalidDate
	default:
		return NotAvailable
	}
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename builds the download name for an export of title taken on day:
// every non-alphanumeric character of the title becomes '-', followed by
// "-participants-" and the date as YYYY-MM-DD.
func Filename(title string, day time.Time) string {
	return nonAlphanumeric.ReplaceAllString(title, "-") + "-participants-" + day.Format("2006-01-02") + ".csv"
}

// registrationTime prefers the selection's creation time and falls back to
// the registration's own when the selection carries none.
func registrationTime(p models.Participant) models.Timestamp {
	if p.RegistrationDate.Present() {
		return p.RegistrationDate
	}
	return p.CreatedAt
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func (e Exporter) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

func (e Exporter) layout() string {
	if e.Layout == "" {
		return DefaultDateLayout
	}
	return e.Layout
}

func (e Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
