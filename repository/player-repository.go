package repository

import "time"

// PlayerTournament is one tournament entry inside a directory record.
// Categories behave as a set: a category appears at most once.
type PlayerTournament struct {
	TournamentId     string    `json:"tournamentId"`
	Categories       []string  `json:"categories"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// Player is the consolidated directory record for one CPF. The directory is
// derived state: it must always be reconstructible by replaying the
// registrations file.
type Player struct {
	CPF         string              `json:"cpf"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	CreatedAt   time.Time           `json:"createdAt"`
	LastUpdate  time.Time           `json:"lastUpdate"`
	Tournaments []*PlayerTournament `json:"tournaments"`
}

func (p *Player) FindTournament(tournamentId string) *PlayerTournament {
	for _, entry := range p.Tournaments {
		if entry.TournamentId == tournamentId {
			return entry
		}
	}
	return nil
}

type PlayerRepository struct {
	file *jsonFile[[]*Player]
}

func (r *PlayerRepository) FindAll() []*Player {
	return r.file.load()
}

func (r *PlayerRepository) GetByCPF(cpf string) (*Player, error) {
	for _, player := range r.file.load() {
		if player.CPF == cpf {
			return player, nil
		}
	}
	return nil, ErrNotFound
}

// Update runs a read-modify-write cycle over the whole directory under the
// store lock. The directory maintenance logic lives in the player service;
// this is its single mutation point.
func (r *PlayerRepository) Update(fn func(players []*Player) []*Player) error {
	return r.file.update(func(players []*Player) ([]*Player, error) {
		return fn(players), nil
	})
}
