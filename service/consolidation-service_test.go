package service

import (
	"testing"

	"torneio/app_error"
	"torneio/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniquePlayersMergesBothRoles(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)
	consolidationService := NewConsolidationService(stores)

	_, err := registrationService.Register(tournament.Id, doublesInput(
		participant("ana", cpfAna), participant("bruno", cpfBruno)))
	require.NoError(t, err)

	result, err := consolidationService.UniquePlayers(tournament.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Players, 2)

	byCPF := map[string]*UniquePlayer{}
	for _, player := range result.Players {
		byCPF[player.CPF] = player
	}
	assert.Equal(t, []string{"X1", "X2"}, byCPF[cpfAna].Categories)
	assert.Equal(t, []string{"X2"}, byCPF[cpfBruno].Categories)
	assert.Equal(t, 40.0, byCPF[cpfAna].TotalPrice)
	assert.Equal(t, 30.0, byCPF[cpfBruno].TotalPrice)

	assert.Equal(t, 2, result.Statistics.TotalPlayers)
	assert.Equal(t, 70.0, result.Statistics.TotalRevenue)
	assert.Equal(t, 1, result.Statistics.CategoriesBreakdown["X1"].Players)
	assert.Equal(t, 2, result.Statistics.CategoriesBreakdown["X2"].Players)
}

// The consolidated view reprices within the tournament, so a player whose
// base price was already spent in another tournament still shows a base
// price entry here. Both numbers are intentionally reported as they are.
func TestUniquePlayersRepricesIndependentlyOfLifetimeHistory(t *testing.T) {
	stores := newTestStores(t)
	first := newTournament(nil)
	second := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(first))
	require.NoError(t, stores.Tournaments.Create(second))
	registrationService := NewRegistrationService(stores)
	consolidationService := NewConsolidationService(stores)

	_, err := registrationService.Register(first.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	charged, err := registrationService.Register(second.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	// The registration itself was billed at the additional price.
	assert.Equal(t, 10.0, charged.TotalPrice)

	result, err := consolidationService.UniquePlayers(second.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Players, 1)
	// The consolidated view disagrees: scoped to the tournament, X1 is the
	// player's first category and shows the base price.
	assert.Equal(t, 30.0, result.Players[0].TotalPrice)

	stored := stores.Registrations.FindByTournament(second.Id)
	require.Len(t, stored, 1)
	assert.Equal(t, 10.0, stored[0].Price)
}

func TestUniquePlayersSortsCategoriesBeforeRepricing(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)
	consolidationService := NewConsolidationService(stores)

	// Request order X2 first: the stored records bill X2 at the base price.
	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("ana", cpfAna),
		Partners:   map[string]repository.Participant{"X2": participant("bruno", cpfBruno)},
		Categories: []string{"X2", "X1"},
	})
	require.NoError(t, err)
	stored := stores.Registrations.FindByTournament(tournament.Id)
	require.Len(t, stored, 2)
	assert.Equal(t, "X2", stored[0].Category)
	assert.Equal(t, 30.0, stored[0].Price)
	assert.Equal(t, 10.0, stored[1].Price)

	// The view sorts alphabetically, so the base price lands on X1 instead.
	result, err := consolidationService.UniquePlayers(tournament.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	var ana *UniquePlayer
	for _, player := range result.Players {
		if player.CPF == cpfAna {
			ana = player
		}
	}
	require.NotNil(t, ana)
	require.Len(t, ana.Registrations, 2)
	assert.Equal(t, "X1", ana.Registrations[0].Category)
	assert.Equal(t, 30.0, ana.Registrations[0].Price)
	assert.Equal(t, "X2", ana.Registrations[1].Category)
	assert.Equal(t, 10.0, ana.Registrations[1].Price)
	assert.Equal(t, 40.0, ana.TotalPrice)
}

func TestUniquePlayersPermissions(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	tournament.CreatedBy = "carla"
	require.NoError(t, stores.Tournaments.Create(tournament))
	consolidationService := NewConsolidationService(stores)

	_, err := consolidationService.UniquePlayers(tournament.Id, "other", repository.RoleOrganizer)
	assert.Equal(t, 403, app_error.HTTPStatus(err))

	_, err = consolidationService.UniquePlayers(tournament.Id, "carla", repository.RoleOrganizer)
	assert.NoError(t, err)

	_, err = consolidationService.UniquePlayers("missing", "admin", repository.RoleAdmin)
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}

func TestPaymentStatusJoinsIntoView(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)
	consolidationService := NewConsolidationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	require.NoError(t, consolidationService.SetPaymentStatus(tournament.Id, cpfAna, true))

	result, err := consolidationService.UniquePlayers(tournament.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, result.Players, 1)
	assert.True(t, result.Players[0].IsPaid)

	require.NoError(t, consolidationService.SetPaymentStatus(tournament.Id, cpfAna, false))
	result, err = consolidationService.UniquePlayers(tournament.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, result.Players[0].IsPaid)
}

func TestSetPaymentStatusRequiresKey(t *testing.T) {
	stores := newTestStores(t)
	consolidationService := NewConsolidationService(stores)
	err := consolidationService.SetPaymentStatus("t1", "", true)
	assert.Equal(t, 400, app_error.HTTPStatus(err))
}

// Payment marks survive the player dropping out and re-registering, since
// the side table is keyed by player, not by registration.
func TestPaymentStatusSurvivesReRegistration(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)
	consolidationService := NewConsolidationService(stores)

	result, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	require.NoError(t, consolidationService.SetPaymentStatus(tournament.Id, cpfAna, true))

	require.NoError(t, registrationService.Delete("admin", repository.RoleAdmin, result.Registrations[0].Id))
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	view, err := consolidationService.UniquePlayers(tournament.Id, "admin", repository.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, view.Players, 1)
	assert.True(t, view.Players[0].IsPaid)
}
