package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/internal/widget"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
	"github.com/noah-isme/socialflow-api/pkg/export"
	"github.com/noah-isme/socialflow-api/pkg/i18n"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

var exportHeaders = []string{"Course", "Type", "Title", "Action", "Frequency", "Status", "Comment", "URL"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportFile is a rendered flow export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders flows as downloadable files.
type ExportService struct {
	csv       csvRenderer
	pdf       pdfRenderer
	presenter widget.Presenter
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export ones.
func NewExportService(csv csvRenderer, pdf pdfRenderer, catalog *i18n.Catalog, location *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if location == nil {
		location = time.UTC
	}
	return &ExportService{csv: csv, pdf: pdf, presenter: widget.NewPresenter(catalog), location: location, logger: logger, now: time.Now}
}

// Dataset flattens flow entries into export rows.
func (s *ExportService) Dataset(flow *models.Flow) export.Dataset {
	data := export.Dataset{Headers: exportHeaders}
	for _, entry := range flow.Entries {
		deadline := entry.Deadline
		if deadline.Date != nil {
			local := deadline.Date.In(s.location)
			deadline.Date = &local
		}
		data.Rows = append(data.Rows, map[string]string{
			"Course":    entry.CourseShortName,
			"Type":      entry.ModuleLabel,
			"Title":     entry.Title,
			"Action":    s.presenter.Action(entry.ActionType),
			"Frequency": strconv.Itoa(entry.Percent) + "%",
			"Status":    s.presenter.Status(entry.Status),
			"Comment":   s.presenter.Deadline(deadline),
			"URL":       entry.URL,
		})
	}
	return data
}

// Export renders the flow in the requested format.
func (s *ExportService) Export(flow *models.Flow, format string) (*ExportFile, error) {
	if flow == nil {
		return nil, appErrors.ErrNoData
	}
	data := s.Dataset(flow)
	stamp := s.now().In(s.location)
	base := "socialflow-" + stamp.Format("20060102-1504")

	switch format {
	case FormatCSV:
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatPDF:
		subtitle := fmt.Sprintf("%s, %s", s.presenter.WindowLabel(flow.Filter.WindowDays), i18n.LongDate(stamp))
		body, err := s.pdf.Render(data, s.presenter.T("blocktitle"), subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}
