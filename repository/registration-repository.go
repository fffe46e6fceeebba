package repository

import (
	"time"

	"torneio/utils"
)

// Participant is one person inside a registration, main player or partner.
type Participant struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Registration is one (player, category) entry in a tournament. A sign-up
// for several categories is stored as one record per category, each priced
// independently.
type Registration struct {
	Id           string       `json:"id"`
	TournamentId string       `json:"tournamentId"`
	Player1      Participant  `json:"player1"`
	Partner      *Participant `json:"partner"`
	Category     string       `json:"category"`
	Price        float64      `json:"price"`
	PartnerPrice float64      `json:"partnerPrice"`
	RegisteredAt time.Time    `json:"registeredAt"`
}

// Involves reports whether the given normalized CPF appears in the
// registration, as main player or partner.
func (r *Registration) Involves(cpf string) bool {
	return r.Player1.CPF == cpf || (r.Partner != nil && r.Partner.CPF == cpf)
}

type RegistrationRepository struct {
	file *jsonFile[[]*Registration]
}

func (r *RegistrationRepository) FindAll() []*Registration {
	return r.file.load()
}

func (r *RegistrationRepository) FindByTournament(tournamentId string) []*Registration {
	return utils.Filter(r.file.load(), func(reg *Registration) bool {
		return reg.TournamentId == tournamentId
	})
}

func (r *RegistrationRepository) FindByCPF(cpf string) []*Registration {
	return utils.Filter(r.file.load(), func(reg *Registration) bool {
		return reg.Involves(cpf)
	})
}

// CountByCPF is the player's lifetime registration count across all
// tournaments, the input to progressive pricing.
func (r *RegistrationRepository) CountByCPF(cpf string) int {
	return len(r.FindByCPF(cpf))
}

func (r *RegistrationRepository) GetById(registrationId string) (*Registration, error) {
	for _, reg := range r.file.load() {
		if reg.Id == registrationId {
			return reg, nil
		}
	}
	return nil, ErrNotFound
}

// AppendAll persists a batch of new registrations in a single write.
func (r *RegistrationRepository) AppendAll(registrations []*Registration) error {
	return r.file.update(func(existing []*Registration) ([]*Registration, error) {
		return append(existing, registrations...), nil
	})
}

// DeleteById removes one registration and returns it, so the caller can
// retract it from the player directory.
func (r *RegistrationRepository) DeleteById(registrationId string) (*Registration, error) {
	var deleted *Registration
	err := r.file.update(func(registrations []*Registration) ([]*Registration, error) {
		remaining := make([]*Registration, 0, len(registrations))
		for _, reg := range registrations {
			if reg.Id == registrationId {
				deleted = reg
				continue
			}
			remaining = append(remaining, reg)
		}
		if deleted == nil {
			return nil, ErrNotFound
		}
		return remaining, nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
