package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	resultsSheet    = "Results"
	sectionsSheet   = "Sections"
)

var (
	resultsHeader = []interface{}{
		"Attempt ID", "User ID", "Status", "Score", "Total Marks", "Percentage",
		"Passed", "Time Taken (s)", "Accuracy", "Speed (s/answer)", "Started At", "Completed At",
	}
	sectionsHeader = []interface{}{
		"Attempt ID", "User ID", "Section", "Correct", "Total", "Avg Time (s)",
	}
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResults renders every attempt of an assessment as an xlsx workbook
func (s *exportService) ExportResults(ctx context.Context, assessmentID uint, identity Identity) (*ExportFile, error) {
	if err := requireAdmin(identity, "assessment", assessmentID, "export"); err != nil {
		return nil, err
	}

	assessment, err := s.repo.Assessment().GetByIDUnscoped(ctx, nil, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, storageError("failed to get assessment", err)
	}

	attempts, err := s.repo.Attempt().ListByAssessment(ctx, nil, assessmentID)
	if err != nil {
		return nil, storageError("failed to list attempts", err)
	}

	data, err := buildResultsWorkbook(assessment, attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	s.logger.Info("Exported assessment results",
		"assessment_id", assessmentID,
		"attempts", len(attempts),
		"bytes", len(data))

	return &ExportFile{
		FileName:    fmt.Sprintf("assessment-%d-results.xlsx", assessmentID),
		ContentType: xlsxContentType,
		Data:        data,
	}, nil
}

func buildResultsWorkbook(assessment *models.Assessment, attempts []*models.Attempt) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sectionsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}
	if err := writeHeader(f, resultsSheet, resultsHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, sectionsSheet, sectionsHeader, headerStyle); err != nil {
		return nil, err
	}

	sectionRow := 2
	for i, attempt := range attempts {
		performance := attempt.Performance.Data()
		row := []interface{}{
			attempt.ID,
			attempt.UserID,
			string(attempt.Status),
			attempt.TotalScore,
			assessment.TotalMarks,
			roundFloat(attempt.Percentage, 2),
			attempt.Passed,
			attempt.TimeTaken,
			roundFloat(performance.Accuracy, 2),
			roundFloat(performance.Speed, 2),
			attempt.StartedAt.Format(time.RFC3339),
			formatOptionalTime(attempt.CompletedAt),
		}
		if err := setRow(f, resultsSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, summary := range performance.SectionWise {
			sectionData := []interface{}{
				attempt.ID,
				attempt.UserID,
				string(summary.Section),
				summary.Correct,
				summary.Total,
				roundFloat(summary.AvgTime, 2),
			}
			if err := setRow(f, sectionsSheet, sectionRow, sectionData); err != nil {
				return nil, err
			}
			sectionRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
