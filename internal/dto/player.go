package dto

import (
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePlayerRequest defines the data needed to register a player.
type CreatePlayerRequest struct {
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName"`
	GuardianEmail string `json:"guardianEmail" binding:"omitempty,email"`
	BirthYear     int    `json:"birthYear" binding:"omitempty,gte=1950,lte=2100"`
}

// PlayerResponse defines the data returned for a player.
type PlayerResponse struct {
	PlayerID      string    `json:"playerID"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	GuardianEmail string    `json:"guardianEmail,omitempty"`
	BirthYear     int       `json:"birthYear,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// CreatePlayerResponse returns the player together with the dues account created for it.
type CreatePlayerResponse struct {
	Player      PlayerResponse      `json:"player"`
	DuesAccount DuesAccountResponse `json:"duesAccount"`
}

type ListPlayersParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

func ToPlayerResponse(p *domain.Player) PlayerResponse {
	return PlayerResponse{
		PlayerID:      p.PlayerID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		GuardianEmail: p.GuardianEmail,
		BirthYear:     p.BirthYear,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
	}
}

func ToListPlayerResponse(players []domain.Player) []PlayerResponse {
	res := make([]PlayerResponse, len(players))
	for i := range players {
		res[i] = ToPlayerResponse(&players[i])
	}
	return res
}

// DuesAccountResponse defines the data returned for a dues account.
type DuesAccountResponse struct {
	AccountID       string          `json:"accountID"`
	PlayerID        string          `json:"playerID"`
	Balance         decimal.Decimal `json:"balance"`
	IsGoodStanding  bool            `json:"isGoodStanding"`
	LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

func ToDuesAccountResponse(a *domain.DuesAccount) DuesAccountResponse {
	return DuesAccountResponse{
		AccountID:       a.AccountID,
		PlayerID:        a.PlayerID,
		Balance:         a.Balance,
		IsGoodStanding:  a.IsGoodStanding,
		LastPaymentDate: a.LastPaymentDate,
		LastUpdatedAt:   a.LastUpdatedAt,
	}
}
