package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/SscSPs/club_management_app/internal/utils"
)

var rosterHeader = []string{"Player ID", "Player", "Guardian Email", "Balance", "Good Standing", "Last Payment"}

type exportService struct {
	BaseService
	duesRepo portsrepo.DuesAccountReader
	writer   portssvc.RosterWriter
}

func NewExportService(duesRepo portsrepo.DuesAccountReader, writer portssvc.RosterWriter) portssvc.DuesExportSvc {
	return &exportService{BaseService: newBaseService(), duesRepo: duesRepo, writer: writer}
}

var _ portssvc.DuesExportSvc = (*exportService)(nil)

// ExportDuesRoster overwrites the dues sheet with the current roster.
func (s *exportService) ExportDuesRoster(ctx context.Context) (*dto.ExportDuesResponse, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("%w: spreadsheet export is not configured", apperrors.ErrRemote)
	}
	roster, err := s.duesRepo.ListDuesRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dues roster: %w", err)
	}

	rows := make([][]any, 0, len(roster))
	for _, e := range roster {
		lastPayment := ""
		if e.LastPaymentDate != nil {
			lastPayment = e.LastPaymentDate.Format(time.DateOnly)
		}
		standing := "No"
		if e.IsGoodStanding {
			standing = "Yes"
		}
		rows = append(rows, []any{e.PlayerID, e.PlayerName, e.GuardianEmail, utils.FormatMoney(e.Balance), standing, lastPayment})
	}

	if err := s.writer.WriteRoster(ctx, rosterHeader, rows); err != nil {
		s.LogError(ctx, err, "Dues roster export failed")
		return nil, err
	}
	exportedAt := s.now()
	s.LogInfo(ctx, "Dues roster exported", slog.Int("rows", len(rows)))
	return &dto.ExportDuesResponse{Rows: len(rows), ExportedAt: exportedAt}, nil
}
