package service

import (
	"sort"
	"time"

	"torneio/app_error"
	"torneio/repository"
)

// ConsolidationService builds the per-tournament unique-players view. Its
// pricing rule is tournament scoped: first category of the player's distinct
// set in this tournament at base price, the rest at additional price. That
// deliberately differs from the lifetime rule used at registration time; the
// report can show a different first-category price than the one billed.
type ConsolidationService struct {
	tournamentRepository   *repository.TournamentRepository
	registrationRepository *repository.RegistrationRepository
	paymentRepository      *repository.PaymentRepository
}

func NewConsolidationService(stores *repository.Stores) *ConsolidationService {
	return &ConsolidationService{
		tournamentRepository:   stores.Tournaments,
		registrationRepository: stores.Registrations,
		paymentRepository:      stores.Payments,
	}
}

// UniquePlayer is one deduplicated person in a tournament, merging their
// main and partner appearances.
type UniquePlayer struct {
	CPF                string                `json:"cpf"`
	Name               string                `json:"name"`
	Email              string                `json:"email"`
	Phone              string                `json:"phone"`
	Categories         []string              `json:"categories"`
	CategoriesCount    int                   `json:"categoriesCount"`
	Registrations      []*CategoryPriceEntry `json:"registrations"`
	RegistrationsCount int                   `json:"registrationsCount"`
	TotalPrice         float64               `json:"totalPrice"`
	IsPaid             bool                  `json:"isPaid"`
}

type CategoryPriceEntry struct {
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type CategoryStats struct {
	Players int     `json:"players"`
	Revenue float64 `json:"revenue"`
}

type TournamentStats struct {
	TotalPlayers        int                      `json:"totalPlayers"`
	TotalRevenue        float64                  `json:"totalRevenue"`
	CategoriesBreakdown map[string]CategoryStats `json:"categoriesBreakdown"`
}

type UniquePlayersResult struct {
	Tournament TournamentHeader `json:"tournament"`
	Players    []*UniquePlayer  `json:"players"`
	Statistics TournamentStats  `json:"statistics"`
}

type TournamentHeader struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Location  string `json:"location"`
}

// playerKey identifies a person in the consolidation: the CPF, or the email
// when the CPF is absent.
func playerKey(participant repository.Participant) string {
	if participant.CPF != "" {
		return participant.CPF
	}
	return participant.Email
}

// UniquePlayers merges a tournament's registrations into one row per
// person, reprices from the tournament-scoped category set and joins the
// payment side table.
func (s *ConsolidationService) UniquePlayers(tournamentId string, username string, role repository.Role) (*UniquePlayersResult, error) {
	tournament, err := s.tournamentRepository.GetById(tournamentId)
	if err != nil {
		return nil, app_error.NotFound("tournament not found")
	}
	if !canManageTournament(username, role, tournament) {
		return nil, app_error.Forbidden("you can only view players of your own tournaments")
	}

	registrations := s.registrationRepository.FindByTournament(tournamentId)
	payments := s.paymentRepository.FindByTournament(tournamentId)

	players := map[string]*UniquePlayer{}
	order := []string{}
	collect := func(participant repository.Participant) *UniquePlayer {
		key := playerKey(participant)
		player, ok := players[key]
		if !ok {
			player = &UniquePlayer{
				CPF:        participant.CPF,
				Name:       participant.Name,
				Email:      participant.Email,
				Phone:      participant.Phone,
				Categories: []string{},
				IsPaid:     payments[key].IsPaid,
			}
			players[key] = player
			order = append(order, key)
		}
		return player
	}
	addCategory := func(player *UniquePlayer, category string) {
		for _, existing := range player.Categories {
			if existing == category {
				return
			}
		}
		player.Categories = append(player.Categories, category)
	}
	for _, reg := range registrations {
		mainPlayer := collect(reg.Player1)
		addCategory(mainPlayer, reg.Category)
		if reg.Partner == nil || playerKey(*reg.Partner) == playerKey(reg.Player1) {
			continue
		}
		partner := collect(*reg.Partner)
		addCategory(partner, reg.Category)
	}

	// Tournament-scoped repricing over the sorted distinct category set.
	for _, key := range order {
		player := players[key]
		sort.Strings(player.Categories)
		player.CategoriesCount = len(player.Categories)
		for i, category := range player.Categories {
			price := tournament.AdditionalPrice
			if i == 0 {
				price = tournament.BasePrice
			}
			player.TotalPrice += price
			player.Registrations = append(player.Registrations, &CategoryPriceEntry{
				Category:     category,
				Price:        price,
				RegisteredAt: registeredAtFor(registrations, player.CPF, category),
			})
		}
		player.RegistrationsCount = len(player.Registrations)
	}

	result := &UniquePlayersResult{
		Tournament: TournamentHeader{
			Id:        tournament.Id,
			Name:      tournament.Name,
			StartDate: tournament.StartDate,
			EndDate:   tournament.EndDate,
			Location:  tournament.Location,
		},
		Players: make([]*UniquePlayer, 0, len(order)),
		Statistics: TournamentStats{
			CategoriesBreakdown: map[string]CategoryStats{},
		},
	}
	for _, key := range order {
		result.Players = append(result.Players, players[key])
	}
	sort.SliceStable(result.Players, func(a, b int) bool {
		return result.Players[a].TotalPrice > result.Players[b].TotalPrice
	})

	result.Statistics.TotalPlayers = len(result.Players)
	for _, player := range result.Players {
		result.Statistics.TotalRevenue += player.TotalPrice
	}
	for _, categoryName := range tournament.CategoryNames() {
		stats := CategoryStats{}
		for _, player := range result.Players {
			for _, entry := range player.Registrations {
				if entry.Category == categoryName {
					stats.Players++
					stats.Revenue += entry.Price
					break
				}
			}
		}
		result.Statistics.CategoriesBreakdown[categoryName] = stats
	}
	return result, nil
}

func registeredAtFor(registrations []*repository.Registration, playerCPF string, category string) time.Time {
	for _, reg := range registrations {
		if reg.Category == category && reg.Involves(playerCPF) {
			return reg.RegisteredAt
		}
	}
	return time.Now()
}

// SetPaymentStatus flips the operator-maintained paid flag. The side table
// is independent of the registration data; no tournament lookup is done.
func (s *ConsolidationService) SetPaymentStatus(tournamentId string, playerKey string, isPaid bool) error {
	if playerKey == "" {
		return app_error.Validation("player key is required")
	}
	if err := s.paymentRepository.SetStatus(tournamentId, playerKey, isPaid); err != nil {
		return app_error.Internal(err)
	}
	return nil
}
