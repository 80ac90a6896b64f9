package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/app/models/dto"
	"github.com/jumpyouth/checkin/internal/pkg/apperrors"
	"github.com/jumpyouth/checkin/internal/pkg/helpers"
	"github.com/jumpyouth/checkin/internal/pkg/logger"
)

// ParticipantsFilename is the download name of the participant export
const ParticipantsFilename = "participantes.csv"

var (
	participantHeader = []string{"Nome", "Sobrenome", "Data de Nascimento", "Gênero", "PG", "Império"}
	attendanceHeader  = []string{"Data", "Nome", "Presente"}
)

// ExportService renders participant and attendance exports
type ExportService interface {
	WriteParticipantsCSV(ctx context.Context, year int, w io.Writer) error
	WriteAttendanceCSV(ctx context.Context, dayID int64, w io.Writer) error
	AttendanceFilename(ctx context.Context, dayID int64) (string, error)
	ExportParticipantsToSheets(ctx context.Context, year int) (*dto.SheetsExportResponse, error)
}

type exportServiceImpl struct {
	participants ParticipantStore
	days         EventDayStore
	attendance   AttendanceStore
	sheet        SheetWriter
	sheetRange   string
}

// NewExportService creates a new export service. A nil sheet disables the
// Google Sheets export.
func NewExportService(participants ParticipantStore, days EventDayStore, attendance AttendanceStore, sheet SheetWriter, sheetRange string) ExportService {
	if sheetRange == "" {
		sheetRange = "Participantes!A1"
	}
	return &exportServiceImpl{
		participants: participants,
		days:         days,
		attendance:   attendance,
		sheet:        sheet,
		sheetRange:   sheetRange,
	}
}

func participantRow(p models.Participant) []string {
	return []string{
		p.GivenName,
		p.FamilyName,
		p.BirthDate.Format(models.DateLayout),
		p.Gender.Label(),
		p.CohortName,
		p.ImperioName,
	}
}

func (s *exportServiceImpl) participantRows(ctx context.Context, year int) ([][]string, error) {
	participants, err := s.participants.ListByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, participantRow(p))
	}
	return rows, nil
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteParticipantsCSV writes the year's participants ordered by name
func (s *exportServiceImpl) WriteParticipantsCSV(ctx context.Context, year int, w io.Writer) error {
	rows, err := s.participantRows(ctx, year)
	if err != nil {
		return err
	}
	if err := writeCSV(w, participantHeader, rows); err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error writing participants CSV")
		return fmt.Errorf("error writing participants CSV: %w", err)
	}
	return nil
}

// WriteAttendanceCSV writes a day's attendance records ordered by given name
func (s *exportServiceImpl) WriteAttendanceCSV(ctx context.Context, dayID int64, w io.Writer) error {
	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		return err
	}
	entries, err := s.attendance.ListForDay(ctx, dayID)
	if err != nil {
		return err
	}

	date := helpers.FormatBRDate(day.Date)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		present := "Não"
		if e.Present {
			present = "Sim"
		}
		rows = append(rows, []string{date, e.FullName(), present})
	}

	if err := writeCSV(w, attendanceHeader, rows); err != nil {
		logger.Error().Err(err).Int64("eventDayID", dayID).Msg("Error writing attendance CSV")
		return fmt.Errorf("error writing attendance CSV: %w", err)
	}
	return nil
}

// AttendanceFilename is presencas_DD_MM_YYYY.csv for the day's date
func (s *exportServiceImpl) AttendanceFilename(ctx context.Context, dayID int64) (string, error) {
	day, err := s.days.GetByID(ctx, dayID)
	if err != nil {
		return "", err
	}
	return "presencas_" + day.Date.Format("02_01_2006") + ".csv", nil
}

// ExportParticipantsToSheets replaces the configured range with the year's
// participants
func (s *exportServiceImpl) ExportParticipantsToSheets(ctx context.Context, year int) (*dto.SheetsExportResponse, error) {
	if s.sheet == nil {
		return nil, apperrors.NewValidationError("sheets", "Google Sheets export is not enabled")
	}

	rows, err := s.participantRows(ctx, year)
	if err != nil {
		return nil, err
	}
	if err := s.sheet.ReplaceTable(ctx, s.sheetRange, participantHeader, rows); err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error exporting participants to Google Sheets")
		return nil, fmt.Errorf("error exporting to Google Sheets: %w", err)
	}

	logger.Info().Int("year", year).Int("rows", len(rows)).Msg("Participants exported to Google Sheets")
	return &dto.SheetsExportResponse{
		SpreadsheetID: s.sheet.SpreadsheetID(),
		Range:         s.sheetRange,
		Rows:          len(rows),
	}, nil
}
