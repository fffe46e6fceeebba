package repository

import (
	"path/filepath"

	"torneio/config"
)

// Stores bundles the five document repositories. One instance is built in
// main and threaded through the controllers, so every request goes through
// the same store locks.
type Stores struct {
	Tournaments   *TournamentRepository
	Registrations *RegistrationRepository
	Players       *PlayerRepository
	Payments      *PaymentRepository
	Users         *UserRepository
}

func NewStores() *Stores {
	return NewStoresAt(config.Env().DataDir, config.UsersFilePath())
}

func NewStoresAt(dataDir string, usersFile string) *Stores {
	return &Stores{
		Tournaments:   &TournamentRepository{file: newJSONFile[[]*Tournament](filepath.Join(dataDir, config.TournamentsFile))},
		Registrations: &RegistrationRepository{file: newJSONFile[[]*Registration](filepath.Join(dataDir, config.RegistrationsFile))},
		Players:       &PlayerRepository{file: newJSONFile[[]*Player](filepath.Join(dataDir, config.PlayersFile))},
		Payments:      &PaymentRepository{file: newJSONFile[paymentDocument](filepath.Join(dataDir, config.PaymentStatusFile))},
		Users:         &UserRepository{file: newJSONFile[map[string]*User](usersFile)},
	}
}
