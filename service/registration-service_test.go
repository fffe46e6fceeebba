package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"torneio/app_error"
	"torneio/client"
	"torneio/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doublesInput(main repository.Participant, partner repository.Participant) RegisterInput {
	return RegisterInput{
		Player1:    main,
		Partners:   map[string]repository.Participant{"X2": partner},
		Categories: []string{"X1", "X2"},
	}
}

func TestRegisterSinglesAndDoubles(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	result, err := registrationService.Register(tournament.Id, doublesInput(
		participant("ana", cpfAna), participant("bruno", cpfBruno)))
	require.NoError(t, err)

	// Ana pays base for X1 and additional for X2, Bruno base for his first.
	assert.Equal(t, 40.0, result.MainPlayerTotalPrice)
	assert.Equal(t, 30.0, result.TotalPartnerPrice)
	assert.Equal(t, 70.0, result.TotalPrice)
	assert.Equal(t, []string{"X1", "X2"}, result.Categories)

	require.Len(t, result.Registrations, 2)
	assert.Equal(t, 30.0, result.Registrations[0].MainPlayerPrice)
	assert.Equal(t, 10.0, result.Registrations[1].MainPlayerPrice)
	assert.Equal(t, 30.0, result.Registrations[1].PartnerPrice)
	assert.Equal(t, "bruno", result.Registrations[1].PartnerName)

	assert.Equal(t, cpfAna, result.PriceBreakdown.MainPlayer.CPF)
	assert.Equal(t, 0, result.PriceBreakdown.MainPlayer.ExistingRegistrations)
	require.Len(t, result.PriceBreakdown.Partners, 1)
	assert.Equal(t, cpfBruno, result.PriceBreakdown.Partners[0].CPF)

	stored := stores.Registrations.FindByTournament(tournament.Id)
	require.Len(t, stored, 2)
	assert.Nil(t, stored[0].Partner)
	require.NotNil(t, stored[1].Partner)
	assert.Equal(t, cpfBruno, stored[1].Partner.CPF)
}

func TestRegisterNormalizesInput(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: repository.Participant{
			Name:  "  Ana Souza  ",
			CPF:   "529.982.247-25",
			Email: " ANA@Example.COM ",
			Phone: " 11 99999-0000 ",
		},
		Categories: []string{"X1"},
	})
	require.NoError(t, err)

	stored := stores.Registrations.FindByTournament(tournament.Id)
	require.Len(t, stored, 1)
	assert.Equal(t, "Ana Souza", stored[0].Player1.Name)
	assert.Equal(t, cpfAna, stored[0].Player1.CPF)
	assert.Equal(t, "ana@example.com", stored[0].Player1.Email)
}

func TestRegisterValidationFailures(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	// Missing contact data.
	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1:    repository.Participant{Name: "Ana", CPF: cpfAna},
		Categories: []string{"X1"},
	})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	// Bad checksum.
	invalid := participant("ana", "52998224726")
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: invalid, Categories: []string{"X1"},
	})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	// Category not offered by the tournament.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"Misto"},
	})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	// Doubles category without a partner.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X2"},
	})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	// No categories at all.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna),
	})
	assert.Equal(t, 400, app_error.HTTPStatus(err))

	assert.Empty(t, stores.Registrations.FindAll())
}

func TestRegisterUnknownTournament(t *testing.T) {
	stores := newTestStores(t)
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register("missing", RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}

func TestRegisterDuplicateInEitherRole(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("ana", cpfAna),
		Partners:   map[string]repository.Participant{"X2": participant("bruno", cpfBruno)},
		Categories: []string{"X2"},
	})
	require.NoError(t, err)

	// Ana again as main player in the same category.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("ana", cpfAna),
		Partners:   map[string]repository.Participant{"X2": participant("carla", cpfCarla)},
		Categories: []string{"X2"},
	})
	assert.Equal(t, 409, app_error.HTTPStatus(err))

	// Bruno was only a partner, but holds the category slot all the same.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("bruno", cpfBruno),
		Partners:   map[string]repository.Participant{"X2": participant("carla", cpfCarla)},
		Categories: []string{"X2"},
	})
	assert.Equal(t, 409, app_error.HTTPStatus(err))

	// A new pair whose requested partner is already taken.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("carla", cpfCarla),
		Partners:   map[string]repository.Participant{"X2": participant("ana", cpfAna)},
		Categories: []string{"X2"},
	})
	assert.Equal(t, 409, app_error.HTTPStatus(err))

	// The same people are free to enter a different category.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("ana", cpfAna),
		Categories: []string{"X1"},
	})
	assert.NoError(t, err)
}

func TestRegisterCapacityPerCategory(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(intPtr(1))
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("bruno", cpfBruno), Categories: []string{"X1"},
	})
	assert.Equal(t, 409, app_error.HTTPStatus(err))

	// X2 still has room.
	_, err = registrationService.Register(tournament.Id, RegisterInput{
		Player1:    participant("bruno", cpfBruno),
		Partners:   map[string]repository.Participant{"X2": participant("carla", cpfCarla)},
		Categories: []string{"X2"},
	})
	assert.NoError(t, err)
}

func TestRegisterLifetimePricingAcrossTournaments(t *testing.T) {
	stores := newTestStores(t)
	first := newTournament(nil)
	second := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(first))
	require.NoError(t, stores.Tournaments.Create(second))
	registrationService := NewRegistrationService(stores)

	result, err := registrationService.Register(first.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, result.TotalPrice)

	// The base price was spent on the first tournament for good.
	result, err = registrationService.Register(second.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.TotalPrice)
	assert.Equal(t, 1, result.PriceBreakdown.MainPlayer.ExistingRegistrations)
}

func TestRegisterPartnerIdenticalToMainIsNotBilledTwice(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	result, err := registrationService.Register(tournament.Id,
		doublesInput(participant("ana", cpfAna), participant("ana", cpfAna)))
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.TotalPrice)
	assert.Equal(t, 0.0, result.TotalPartnerPrice)
	assert.Empty(t, result.PriceBreakdown.Partners)
}

func TestRegisterUpdatesPlayerDirectory(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, doublesInput(
		participant("ana", cpfAna), participant("bruno", cpfBruno)))
	require.NoError(t, err)

	ana, err := stores.Players.GetByCPF(cpfAna)
	require.NoError(t, err)
	require.Len(t, ana.Tournaments, 1)
	assert.ElementsMatch(t, []string{"X1", "X2"}, ana.Tournaments[0].Categories)

	bruno, err := stores.Players.GetByCPF(cpfBruno)
	require.NoError(t, err)
	require.Len(t, bruno.Tournaments, 1)
	assert.Equal(t, []string{"X2"}, bruno.Tournaments[0].Categories)
}

func TestPreviewPriceDoesNotPersist(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	preview, err := registrationService.PreviewPrice(tournament.Id, doublesInput(
		participant("ana", cpfAna), participant("bruno", cpfBruno)))
	require.NoError(t, err)
	assert.Equal(t, 70.0, preview.TotalPrice)
	assert.Equal(t, 40.0, preview.Breakdown.MainPlayer.TotalPrice)
	require.Len(t, preview.Breakdown.Partners, 1)
	assert.Equal(t, 30.0, preview.Breakdown.Partners[0].TotalPrice)

	assert.Empty(t, stores.Registrations.FindAll())
	_, err = stores.Players.GetByCPF(cpfAna)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPreviewPriceToleratesMissingPartner(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	preview, err := registrationService.PreviewPrice(tournament.Id, RegisterInput{
		Player1:    participant("ana", cpfAna),
		Categories: []string{"X1", "X2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, preview.TotalPrice)
	assert.Empty(t, preview.Breakdown.Partners)
}

func TestConcurrentRegistrationsForLastSlot(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(intPtr(1))
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	contenders := []string{cpfAna, cpfBruno, cpfCarla, cpfDiego, cpfElisa, cpfFabio}
	results := make([]error, len(contenders))
	var wg sync.WaitGroup
	for i, contender := range contenders {
		wg.Add(1)
		go func(i int, cpf string) {
			defer wg.Done()
			_, results[i] = registrationService.Register(tournament.Id, RegisterInput{
				Player1: participant("player", cpf), Categories: []string{"X1"},
			})
		}(i, contender)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, 409, app_error.HTTPStatus(err))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, stores.Registrations.FindByTournament(tournament.Id), 1)
}

func TestRegisterNotifiesWebhook(t *testing.T) {
	received := make(chan client.WebhookPayload, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload client.WebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer server.Close()

	stores := newTestStores(t)
	tournament := newTournament(nil)
	tournament.Webhook = server.URL
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	select {
	case payload := <-received:
		assert.Equal(t, "registration_completed", payload.Event)
		assert.Equal(t, tournament.Id, payload.Tournament.Id)
		assert.Equal(t, "X1", payload.Registration.Category)
		assert.Equal(t, cpfAna, payload.Registration.Player1.CPF)
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestRegisterSucceedsWhenWebhookIsDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	stores := newTestStores(t)
	tournament := newTournament(nil)
	tournament.Webhook = server.URL
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	assert.NoError(t, err)
	assert.Len(t, stores.Registrations.FindByTournament(tournament.Id), 1)
}

func TestListForTournamentChecksOwnership(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	tournament.CreatedBy = "carla"
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.ListForTournament(tournament.Id, "other", repository.RoleOrganizer)
	assert.Equal(t, 403, app_error.HTTPStatus(err))

	registrations, err := registrationService.ListForTournament(tournament.Id, "carla", repository.RoleOrganizer)
	require.NoError(t, err)
	assert.Empty(t, registrations)

	_, err = registrationService.ListForTournament(tournament.Id, "admin", repository.RoleAdmin)
	assert.NoError(t, err)
}

func TestListAllFiltersByOwnership(t *testing.T) {
	stores := newTestStores(t)
	mine := newTournament(nil)
	mine.CreatedBy = "carla"
	other := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(mine))
	require.NoError(t, stores.Tournaments.Create(other))
	registrationService := NewRegistrationService(stores)

	_, err := registrationService.Register(mine.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)
	_, err = registrationService.Register(other.Id, RegisterInput{
		Player1: participant("bruno", cpfBruno), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	assert.Len(t, registrationService.ListAll("admin", repository.RoleAdmin), 2)
	owned := registrationService.ListAll("carla", repository.RoleOrganizer)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.Id, owned[0].TournamentId)
}

func TestDeleteRegistrationRetractsDirectory(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	result, err := registrationService.Register(tournament.Id, doublesInput(
		participant("ana", cpfAna), participant("bruno", cpfBruno)))
	require.NoError(t, err)
	require.Len(t, result.Registrations, 2)

	// Drop the X2 record: Bruno leaves the directory, Ana keeps X1.
	err = registrationService.Delete("admin", repository.RoleAdmin, result.Registrations[1].Id)
	require.NoError(t, err)

	_, err = stores.Players.GetByCPF(cpfBruno)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	ana, err := stores.Players.GetByCPF(cpfAna)
	require.NoError(t, err)
	require.Len(t, ana.Tournaments, 1)
	assert.Equal(t, []string{"X1"}, ana.Tournaments[0].Categories)
}

func TestDeleteRegistrationPermissions(t *testing.T) {
	stores := newTestStores(t)
	tournament := newTournament(nil)
	tournament.CreatedBy = "carla"
	require.NoError(t, stores.Tournaments.Create(tournament))
	registrationService := NewRegistrationService(stores)

	result, err := registrationService.Register(tournament.Id, RegisterInput{
		Player1: participant("ana", cpfAna), Categories: []string{"X1"},
	})
	require.NoError(t, err)

	err = registrationService.Delete("other", repository.RoleOrganizer, result.Registrations[0].Id)
	assert.Equal(t, 403, app_error.HTTPStatus(err))

	err = registrationService.Delete("carla", repository.RoleOrganizer, result.Registrations[0].Id)
	assert.NoError(t, err)

	err = registrationService.Delete("carla", repository.RoleOrganizer, result.Registrations[0].Id)
	assert.Equal(t, 404, app_error.HTTPStatus(err))
}
