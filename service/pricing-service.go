package service

import (
	"sort"

	"torneio/app_error"
	"torneio/cpf"
	"torneio/repository"
)

// Fallback prices for report rows whose tournament has been deleted.
const (
	orphanedBasePrice       = 30
	orphanedAdditionalPrice = 10
)

// PricingService implements the lifetime pricing rule: a player's very first
// registration across all tournaments costs the base price, every one after
// it the additional price.
type PricingService struct {
	registrationRepository *repository.RegistrationRepository
	tournamentRepository   *repository.TournamentRepository
}

func NewPricingService(stores *repository.Stores) *PricingService {
	return &PricingService{
		registrationRepository: stores.Registrations,
		tournamentRepository:   stores.Tournaments,
	}
}

// PlayerPricing is the lump-sum quote for one player registering for
// newCategoriesCount new categories.
type PlayerPricing struct {
	ExistingRegistrations int     `json:"existingRegistrations"`
	NewRegistrationsPrice float64 `json:"newRegistrationsPrice"`
	TotalPrice            float64 `json:"totalPrice"`
}

// TotalExistingRegistrations counts the player's registrations across every
// tournament, whether they appear as main player or partner.
func (s *PricingService) TotalExistingRegistrations(playerCPF string) int {
	return s.registrationRepository.CountByCPF(cpf.Normalize(playerCPF))
}

// PriceFor quotes newCategoriesCount registrations for the given player. The
// billing timeline is global: only position 0 of the player's lifetime
// sequence is billed at basePrice.
func (s *PricingService) PriceFor(playerCPF string, basePrice, additionalPrice float64, newCategoriesCount int) PlayerPricing {
	existing := s.TotalExistingRegistrations(playerCPF)
	price := 0.0
	for i := 0; i < newCategoriesCount; i++ {
		if existing+i == 0 {
			price += basePrice
		} else {
			price += additionalPrice
		}
	}
	return PlayerPricing{
		ExistingRegistrations: existing,
		NewRegistrationsPrice: price,
		TotalPrice:            price,
	}
}

// CPFValidation is the response of the standalone CPF check: checksum
// validity plus the player's registration history.
type CPFValidation struct {
	IsValid            bool                   `json:"isValid"`
	CPF                string                 `json:"cpf"`
	TotalRegistrations int                    `json:"totalRegistrations"`
	History            []RegistrationHistory  `json:"registrationHistory"`
	Message            string                 `json:"message"`
}

type RegistrationHistory struct {
	TournamentName string `json:"tournamentName"`
	Category       string `json:"category"`
	RegisteredAt   string `json:"registeredAt"`
	PlayerType     string `json:"playerType"`
}

// ValidateCPF normalizes and checksum-validates a raw CPF and, when valid,
// returns the player's registration history across all tournaments.
func (s *PricingService) ValidateCPF(raw string) (*CPFValidation, error) {
	if raw == "" {
		return nil, app_error.Validation("cpf is required")
	}
	normalized := cpf.Normalize(raw)
	if len(normalized) != 11 {
		return nil, app_error.Validation("cpf must contain 11 digits")
	}
	if !cpf.Validate(normalized) {
		return nil, app_error.Validation("invalid cpf")
	}

	registrations := s.registrationRepository.FindByCPF(normalized)
	tournaments := s.tournamentRepository.FindAll()
	tournamentNames := make(map[string]string, len(tournaments))
	for _, tournament := range tournaments {
		tournamentNames[tournament.Id] = tournament.Name
	}

	history := make([]RegistrationHistory, 0, len(registrations))
	for _, reg := range registrations {
		name, ok := tournamentNames[reg.TournamentId]
		if !ok {
			name = "tournament not found"
		}
		playerType := "partner"
		if reg.Player1.CPF == normalized {
			playerType = "main"
		}
		history = append(history, RegistrationHistory{
			TournamentName: name,
			Category:       reg.Category,
			RegisteredAt:   reg.RegisteredAt.Format(timeLayout),
			PlayerType:     playerType,
		})
	}

	message := "valid cpf, first registration"
	if len(registrations) > 0 {
		message = "valid cpf with previous registrations"
	}
	return &CPFValidation{
		IsValid:            true,
		CPF:                normalized,
		TotalRegistrations: len(registrations),
		History:            history,
		Message:            message,
	}, nil
}

// PricingReport is the global per-player breakdown across all tournaments.
type PricingReport struct {
	Summary PricingReportSummary   `json:"summary"`
	Players []*PlayerPricingReport `json:"players"`
}

type PricingReportSummary struct {
	TotalPlayers                     int     `json:"totalPlayers"`
	TotalRegistrations               int     `json:"totalRegistrations"`
	TotalRevenue                     float64 `json:"totalRevenue"`
	AverageRevenuePerPlayer          float64 `json:"averageRevenuePerPlayer"`
	PlayersWithMultipleRegistrations int     `json:"playersWithMultipleRegistrations"`
}

type PlayerPricingReport struct {
	CPF                string                `json:"cpf"`
	Name               string                `json:"name"`
	Email              string                `json:"email"`
	Phone              string                `json:"phone"`
	TotalRegistrations int                   `json:"totalRegistrations"`
	TotalPrice         float64               `json:"totalPrice"`
	Registrations      []*PricingReportEntry `json:"registrations"`
}

type PricingReportEntry struct {
	RegistrationId      string  `json:"registrationId"`
	TournamentId        string  `json:"tournamentId"`
	TournamentName      string  `json:"tournamentName"`
	Category            string  `json:"category"`
	PlayerType          string  `json:"playerType"`
	RegistrationOrder   int     `json:"registrationOrder"`
	Price               float64 `json:"price"`
	RegisteredAt        string  `json:"registeredAt"`
	IsFirstRegistration bool    `json:"isFirstRegistration"`
}

// Report replays every player's registrations in chronological order and
// prices them progressively: order 1 at the tournament's base price,
// everything after at its additional price.
func (s *PricingService) Report() *PricingReport {
	registrations := s.registrationRepository.FindAll()
	tournaments := make(map[string]*repository.Tournament)
	for _, tournament := range s.tournamentRepository.FindAll() {
		tournaments[tournament.Id] = tournament
	}

	type playerGroup struct {
		participant   repository.Participant
		registrations []*repository.Registration
		playerTypes   []string
	}
	groups := map[string]*playerGroup{}
	order := []string{}
	add := func(participant repository.Participant, reg *repository.Registration, playerType string) {
		group, ok := groups[participant.CPF]
		if !ok {
			group = &playerGroup{participant: participant}
			groups[participant.CPF] = group
			order = append(order, participant.CPF)
		}
		group.registrations = append(group.registrations, reg)
		group.playerTypes = append(group.playerTypes, playerType)
	}
	for _, reg := range registrations {
		add(reg.Player1, reg, "main")
		if reg.Partner != nil {
			add(*reg.Partner, reg, "partner")
		}
	}

	report := &PricingReport{Players: make([]*PlayerPricingReport, 0, len(groups))}
	for _, playerCPF := range order {
		group := groups[playerCPF]
		indices := make([]int, len(group.registrations))
		for i := range indices {
			indices[i] = i
		}
		sort.SliceStable(indices, func(a, b int) bool {
			return group.registrations[indices[a]].RegisteredAt.Before(group.registrations[indices[b]].RegisteredAt)
		})

		player := &PlayerPricingReport{
			CPF:                group.participant.CPF,
			Name:               group.participant.Name,
			Email:              group.participant.Email,
			Phone:              group.participant.Phone,
			TotalRegistrations: len(group.registrations),
		}
		for position, idx := range indices {
			reg := group.registrations[idx]
			basePrice := float64(orphanedBasePrice)
			additionalPrice := float64(orphanedAdditionalPrice)
			tournamentName := "tournament not found"
			if tournament, ok := tournaments[reg.TournamentId]; ok {
				basePrice, additionalPrice = tournament.BasePrice, tournament.AdditionalPrice
				tournamentName = tournament.Name
			}
			price := additionalPrice
			if position == 0 {
				price = basePrice
			}
			player.TotalPrice += price
			player.Registrations = append(player.Registrations, &PricingReportEntry{
				RegistrationId:      reg.Id,
				TournamentId:        reg.TournamentId,
				TournamentName:      tournamentName,
				Category:            reg.Category,
				PlayerType:          group.playerTypes[idx],
				RegistrationOrder:   position + 1,
				Price:               price,
				RegisteredAt:        reg.RegisteredAt.Format(timeLayout),
				IsFirstRegistration: position == 0,
			})
		}
		report.Players = append(report.Players, player)
	}

	sort.SliceStable(report.Players, func(a, b int) bool {
		return report.Players[a].TotalPrice > report.Players[b].TotalPrice
	})

	summary := &report.Summary
	summary.TotalPlayers = len(report.Players)
	for _, player := range report.Players {
		summary.TotalRegistrations += player.TotalRegistrations
		summary.TotalRevenue += player.TotalPrice
		if player.TotalRegistrations > 1 {
			summary.PlayersWithMultipleRegistrations++
		}
	}
	if summary.TotalPlayers > 0 {
		summary.AverageRevenuePerPlayer = summary.TotalRevenue / float64(summary.TotalPlayers)
	}
	return report
}
