package service

import (
	"errors"
	"strings"
	"time"

	"torneio/app_error"
	"torneio/repository"
	"torneio/utils"

	"github.com/google/uuid"
)

type TournamentService struct {
	tournamentRepository   *repository.TournamentRepository
	registrationRepository *repository.RegistrationRepository
}

func NewTournamentService(stores *repository.Stores) *TournamentService {
	return &TournamentService{
		tournamentRepository:   stores.Tournaments,
		registrationRepository: stores.Registrations,
	}
}

type CreateTournamentInput struct {
	Name             string                `json:"name"`
	Categories       []repository.Category `json:"categories"`
	MaxRegistrations *int                  `json:"maxRegistrations"`
	StartDate        string                `json:"startDate"`
	EndDate          string                `json:"endDate"`
	Location         string                `json:"location"`
	BasePrice        float64               `json:"baseCategoryPrice"`
	AdditionalPrice  float64               `json:"additionalCategoryPrice"`
	Webhook          string                `json:"webhook"`
}

// TournamentWithCount is a tournament plus its current registration count,
// as shown in listings.
type TournamentWithCount struct {
	*repository.Tournament
	RegistrationsCount int `json:"registrationsCount"`
}

func (s *TournamentService) Create(createdBy string, input CreateTournamentInput) (*repository.Tournament, error) {
	if input.Name == "" || len(input.Categories) == 0 || input.StartDate == "" || input.EndDate == "" || input.Location == "" {
		return nil, app_error.Validation("name, categories, dates and location are required")
	}
	start, err := parseDate(input.StartDate)
	if err != nil {
		return nil, app_error.Validation("invalid start date: %s", input.StartDate)
	}
	end, err := parseDate(input.EndDate)
	if err != nil {
		return nil, app_error.Validation("invalid end date: %s", input.EndDate)
	}
	if !start.Before(end) {
		return nil, app_error.Validation("start date must be before end date")
	}
	for _, category := range input.Categories {
		if category.IsLegacy() {
			continue
		}
		if strings.TrimSpace(category.Name) == "" {
			return nil, app_error.Validation("category name is required")
		}
		if category.PlayersPerTeam < 1 || category.PlayersPerTeam > 10 {
			return nil, app_error.Validation("players per team must be between 1 and 10")
		}
	}
	if input.BasePrice < 0 || input.AdditionalPrice < 0 {
		return nil, app_error.Validation("prices must not be negative")
	}
	if input.MaxRegistrations != nil && *input.MaxRegistrations < 1 {
		return nil, app_error.Validation("max registrations per category must be positive")
	}

	tournament := &repository.Tournament{
		Id:               uuid.NewString(),
		Name:             strings.TrimSpace(input.Name),
		Categories:       input.Categories,
		MaxRegistrations: input.MaxRegistrations,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Location:         strings.TrimSpace(input.Location),
		BasePrice:        input.BasePrice,
		AdditionalPrice:  input.AdditionalPrice,
		Webhook:          strings.TrimSpace(input.Webhook),
		CreatedBy:        createdBy,
		CreatedAt:        time.Now(),
	}
	if err := s.tournamentRepository.Create(tournament); err != nil {
		return nil, app_error.Internal(err)
	}
	return tournament, nil
}

func (s *TournamentService) GetById(tournamentId string) (*repository.Tournament, error) {
	tournament, err := s.tournamentRepository.GetById(tournamentId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_error.NotFound("tournament not found")
		}
		return nil, app_error.Internal(err)
	}
	return tournament, nil
}

// ListForUser returns the tournaments visible to the requester with their
// registration counts. Admins see all, organizers only their own.
func (s *TournamentService) ListForUser(username string, role repository.Role) []*TournamentWithCount {
	tournaments := s.tournamentRepository.FindAll()
	if role != repository.RoleAdmin {
		tournaments = utils.Filter(tournaments, func(t *repository.Tournament) bool {
			return t.CreatedBy == username
		})
	}
	registrations := s.registrationRepository.FindAll()
	counts := make(map[string]int, len(tournaments))
	for _, reg := range registrations {
		counts[reg.TournamentId]++
	}
	return utils.Map(tournaments, func(t *repository.Tournament) *TournamentWithCount {
		return &TournamentWithCount{Tournament: t, RegistrationsCount: counts[t.Id]}
	})
}

// Delete removes a tournament. Only the owner or an admin may delete, and
// only while the tournament has no registrations.
func (s *TournamentService) Delete(username string, role repository.Role, tournamentId string) (*repository.Tournament, error) {
	tournament, err := s.GetById(tournamentId)
	if err != nil {
		return nil, err
	}
	if !canManageTournament(username, role, tournament) {
		return nil, app_error.Forbidden("you can only delete tournaments you created")
	}
	registrations := s.registrationRepository.FindByTournament(tournamentId)
	if len(registrations) > 0 {
		return nil, app_error.Conflict("tournament has %d registration(s) and cannot be deleted", len(registrations))
	}
	if err := s.tournamentRepository.Delete(tournamentId); err != nil {
		return nil, app_error.Internal(err)
	}
	return tournament, nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
