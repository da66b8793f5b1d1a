package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/ppdb-selection-api/internal/models"
	appErrors "github.com/noah-isme/ppdb-selection-api/pkg/errors"
	"github.com/noah-isme/ppdb-selection-api/pkg/export"
)

type exportSelectionLister interface {
	List(ctx context.Context, filter models.SelectionFilter) ([]models.SelectionDetail, int, error)
}

// ExportService renders ranked selection results as downloadable CSV.
type ExportService struct {
	selections exportSelectionLister
	paths      selectionPathReader
	exporter   *export.CSVExporter
	logger     *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(selections exportSelectionLister, paths selectionPathReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		selections: selections,
		paths:      paths,
		exporter:   export.NewCSVExporter(),
		logger:     logger,
	}
}

// exportPageSize bounds one listing fetch while paging through all results.
const exportPageSize = 100

// SelectionResults renders the full ranked result list of a path. The second
// return value is a suggested file name.
func (s *ExportService) SelectionResults(ctx context.Context, pathID string) ([]byte, string, error) {
	path, err := s.paths.FindByID(ctx, pathID)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "admission path not found")
	}

	headers := []string{"rank", "full_name", "nisn", "final_score", "status", "notes"}
	var rows []map[string]string
	for page := 1; ; page++ {
		chunk, total, err := s.selections.List(ctx, models.SelectionFilter{PathID: pathID, Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
		}
		for _, selection := range chunk {
			rank := ""
			if selection.Rank != nil {
				rank = strconv.Itoa(*selection.Rank)
			}
			rows = append(rows, map[string]string{
				"rank":        rank,
				"full_name":   selection.FullName,
				"nisn":        selection.NISN,
				"final_score": fmt.Sprintf("%.2f", selection.FinalScore),
				"status":      string(selection.Status),
				"notes":       selection.Notes,
			})
		}
		if page*exportPageSize >= total || len(chunk) == 0 {
			break
		}
	}

	payload, err := s.exporter.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("selection-%s.csv", path.ID)
	return payload, filename, nil
}
