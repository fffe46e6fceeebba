package service

import (
	"time"

	"torneio/repository"
)

const timeLayout = time.RFC3339

// canManageTournament is the ownership rule shared by every protected
// operation: admins see everything, organizers only what they created.
func canManageTournament(username string, role repository.Role, tournament *repository.Tournament) bool {
	return role == repository.RoleAdmin || tournament.CreatedBy == username
}
