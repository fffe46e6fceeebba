package service

import (
	"path/filepath"
	"testing"
	"time"

	"torneio/repository"

	"github.com/google/uuid"
)

// Checksum-valid CPFs used across the service tests.
const (
	cpfAna    = "52998224725"
	cpfBruno  = "12345678909"
	cpfCarla  = "11144477735"
	cpfDiego  = "39053344705"
	cpfElisa  = "86213480048"
	cpfFabio  = "74185296355"
)

func newTestStores(t *testing.T) *repository.Stores {
	dir := t.TempDir()
	return repository.NewStoresAt(dir, filepath.Join(dir, "users.json"))
}

func participant(name, cpf string) repository.Participant {
	return repository.Participant{
		Name:  name,
		CPF:   cpf,
		Email: name + "@example.com",
		Phone: "11999990000",
	}
}

func newTournament(maxRegistrations *int) *repository.Tournament {
	return &repository.Tournament{
		Id:   uuid.NewString(),
		Name: "Copa de Areia",
		Categories: []repository.Category{
			repository.LegacyCategory("X1"),
			repository.LegacyCategory("X2"),
		},
		MaxRegistrations: maxRegistrations,
		StartDate:        "2026-09-01",
		EndDate:          "2026-09-02",
		Location:         "Arena Central",
		BasePrice:        30,
		AdditionalPrice:  10,
		CreatedBy:        "admin",
		CreatedAt:        time.Now(),
	}
}

func intPtr(v int) *int {
	return &v
}
