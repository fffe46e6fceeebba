package service

import (
	"errors"
	"sort"
	"time"

	"torneio/app_error"
	"torneio/cpf"
	"torneio/repository"
	"torneio/utils"
)

// PlayerService maintains the consolidated player directory. The directory
// is a cache over the registrations file: Upsert and Retract keep it equal
// to what a full replay of the live registrations would produce.
type PlayerService struct {
	playerRepository     *repository.PlayerRepository
	tournamentRepository *repository.TournamentRepository
}

func NewPlayerService(stores *repository.Stores) *PlayerService {
	return &PlayerService{
		playerRepository:     stores.Players,
		tournamentRepository: stores.Tournaments,
	}
}

// Upsert folds one created registration into the directory, for the main
// player and the partner when present. Contact fields are last write wins;
// categories are added with set semantics.
func (s *PlayerService) Upsert(tournamentId string, registration *repository.Registration) error {
	err := s.playerRepository.Update(func(players []*repository.Player) []*repository.Player {
		players = upsertParticipant(players, tournamentId, registration.Player1, registration)
		if registration.Partner != nil {
			players = upsertParticipant(players, tournamentId, *registration.Partner, registration)
		}
		return players
	})
	if err != nil {
		return app_error.Internal(err)
	}
	return nil
}

func upsertParticipant(players []*repository.Player, tournamentId string, participant repository.Participant, registration *repository.Registration) []*repository.Player {
	now := time.Now()
	for _, player := range players {
		if player.CPF != participant.CPF {
			continue
		}
		player.Name = participant.Name
		player.Email = participant.Email
		player.Phone = participant.Phone
		player.LastUpdate = now
		if entry := player.FindTournament(tournamentId); entry != nil {
			if !utils.Contains(entry.Categories, registration.Category) {
				entry.Categories = append(entry.Categories, registration.Category)
			}
			entry.RegistrationDate = registration.RegisteredAt
		} else {
			player.Tournaments = append(player.Tournaments, &repository.PlayerTournament{
				TournamentId:     tournamentId,
				Categories:       []string{registration.Category},
				RegistrationDate: registration.RegisteredAt,
			})
		}
		return players
	}
	return append(players, &repository.Player{
		CPF:        participant.CPF,
		Name:       participant.Name,
		Email:      participant.Email,
		Phone:      participant.Phone,
		CreatedAt:  now,
		LastUpdate: now,
		Tournaments: []*repository.PlayerTournament{{
			TournamentId:     tournamentId,
			Categories:       []string{registration.Category},
			RegistrationDate: registration.RegisteredAt,
		}},
	})
}

// Retract is the inverse of Upsert for one deleted registration: the
// category is removed from the matching tournament entry, empty tournament
// entries are dropped, and a player with no tournaments left disappears
// from the directory.
func (s *PlayerService) Retract(registration *repository.Registration) error {
	err := s.playerRepository.Update(func(players []*repository.Player) []*repository.Player {
		players = retractParticipant(players, registration.Player1.CPF, registration)
		if registration.Partner != nil {
			players = retractParticipant(players, registration.Partner.CPF, registration)
		}
		return players
	})
	if err != nil {
		return app_error.Internal(err)
	}
	return nil
}

func retractParticipant(players []*repository.Player, participantCPF string, registration *repository.Registration) []*repository.Player {
	for i, player := range players {
		if player.CPF != participantCPF {
			continue
		}
		entries := make([]*repository.PlayerTournament, 0, len(player.Tournaments))
		for _, entry := range player.Tournaments {
			if entry.TournamentId == registration.TournamentId {
				entry.Categories = utils.Filter(entry.Categories, func(category string) bool {
					return category != registration.Category
				})
				if len(entry.Categories) == 0 {
					continue
				}
			}
			entries = append(entries, entry)
		}
		player.Tournaments = entries
		if len(player.Tournaments) == 0 {
			return append(players[:i], players[i+1:]...)
		}
		return players
	}
	return players
}

// PlayerStats is a directory entry enriched with tournament names and dates.
type PlayerStats struct {
	*repository.Player
	TournamentDetails []*PlayerTournamentDetail `json:"tournamentDetails"`
	TotalTournaments  int                       `json:"totalTournaments"`
	TotalCategories   int                       `json:"totalCategories"`
}

type PlayerTournamentDetail struct {
	*repository.PlayerTournament
	TournamentName  string `json:"tournamentName"`
	TournamentDates string `json:"tournamentDates"`
}

func (s *PlayerService) GetStats(rawCPF string) (*PlayerStats, error) {
	normalized := cpf.Normalize(rawCPF)
	player, err := s.playerRepository.GetByCPF(normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_error.NotFound("player not found")
		}
		return nil, app_error.Internal(err)
	}
	tournaments := make(map[string]*repository.Tournament)
	for _, tournament := range s.tournamentRepository.FindAll() {
		tournaments[tournament.Id] = tournament
	}
	details := utils.Map(player.Tournaments, func(entry *repository.PlayerTournament) *PlayerTournamentDetail {
		detail := &PlayerTournamentDetail{
			PlayerTournament: entry,
			TournamentName:   "tournament not found",
			TournamentDates:  "N/A",
		}
		if tournament, ok := tournaments[entry.TournamentId]; ok {
			detail.TournamentName = tournament.Name
			detail.TournamentDates = tournament.StartDate + " - " + tournament.EndDate
		}
		return detail
	})
	return &PlayerStats{
		Player:            player,
		TournamentDetails: details,
		TotalTournaments:  len(player.Tournaments),
		TotalCategories:   len(distinctCategories(player)),
	}, nil
}

// PlayerOverview is one row of the global players listing.
type PlayerOverview struct {
	CPF              string                  `json:"cpf"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone"`
	TotalTournaments int                     `json:"totalTournaments"`
	TotalCategories  int                     `json:"totalCategories"`
	LastTournament   *PlayerTournamentDetail `json:"lastTournament"`
}

func (s *PlayerService) ListPlayers() []*PlayerOverview {
	tournaments := make(map[string]*repository.Tournament)
	for _, tournament := range s.tournamentRepository.FindAll() {
		tournaments[tournament.Id] = tournament
	}
	return utils.Map(s.playerRepository.FindAll(), func(player *repository.Player) *PlayerOverview {
		overview := &PlayerOverview{
			CPF:              player.CPF,
			Name:             player.Name,
			Email:            player.Email,
			Phone:            player.Phone,
			TotalTournaments: len(player.Tournaments),
			TotalCategories:  len(distinctCategories(player)),
		}
		entries := append([]*repository.PlayerTournament{}, player.Tournaments...)
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].RegistrationDate.After(entries[b].RegistrationDate)
		})
		if len(entries) > 0 {
			latest := entries[0]
			overview.LastTournament = &PlayerTournamentDetail{
				PlayerTournament: latest,
				TournamentName:   "tournament not found",
			}
			if tournament, ok := tournaments[latest.TournamentId]; ok {
				overview.LastTournament.TournamentName = tournament.Name
			}
		}
		return overview
	})
}

func distinctCategories(player *repository.Player) []string {
	all := []string{}
	for _, entry := range player.Tournaments {
		all = append(all, entry.Categories...)
	}
	return utils.Uniques(all)
}
