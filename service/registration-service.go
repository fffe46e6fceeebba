package service

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"torneio/app_error"
	"torneio/client"
	"torneio/cpf"
	"torneio/metrics"
	"torneio/repository"
	"torneio/utils"

	"github.com/google/uuid"
)

// RegistrationService runs the registration workflow: validate, check
// duplicates, check capacity, price, persist, update the directory and
// notify the tournament webhook.
type RegistrationService struct {
	// Serializes the check-then-append sequence so two concurrent requests
	// cannot both pass the duplicate and capacity checks against a stale
	// read of the registrations file.
	mu sync.Mutex

	tournamentRepository   *repository.TournamentRepository
	registrationRepository *repository.RegistrationRepository
	pricingService         *PricingService
	playerService          *PlayerService
	webhookClient          *client.WebhookClient
}

func NewRegistrationService(stores *repository.Stores) *RegistrationService {
	return &RegistrationService{
		tournamentRepository:   stores.Tournaments,
		registrationRepository: stores.Registrations,
		pricingService:         NewPricingService(stores),
		playerService:          NewPlayerService(stores),
		webhookClient:          client.NewWebhookClient(),
	}
}

type RegisterInput struct {
	Player1    repository.Participant            `json:"player1"`
	Partners   map[string]repository.Participant `json:"partners"`
	Categories []string                          `json:"categories"`
}

// registrationRequest is a validated, normalized registration attempt.
type registrationRequest struct {
	player1 repository.Participant
	// requested categories, in request order
	categories []string
	// categories whose definition requires a partner
	categoriesNeedingPartner []string
	// normalized partner by category name
	partners map[string]repository.Participant
	// distinct partner CPFs (excluding the main player) in request order,
	// with the categories naming each
	partnerOrder      []string
	partnerCategories map[string][]string
}

type PlayerCalculation struct {
	PlayerType            string   `json:"playerType"`
	CPF                   string   `json:"cpf"`
	Name                  string   `json:"name"`
	Categories            []string `json:"categories"`
	ExistingRegistrations int      `json:"existingRegistrations"`
	NewRegistrationsPrice float64  `json:"newRegistrationsPrice"`
	TotalPrice            float64  `json:"totalPrice"`
}

type PricePreview struct {
	Tournament   PreviewTournament    `json:"tournament"`
	Calculations []*PlayerCalculation `json:"calculations"`
	TotalPrice   float64              `json:"totalPrice"`
	Breakdown    PreviewBreakdown     `json:"breakdown"`
}

type PreviewTournament struct {
	Id              string  `json:"id"`
	Name            string  `json:"name"`
	BasePrice       float64 `json:"baseCategoryPrice"`
	AdditionalPrice float64 `json:"additionalCategoryPrice"`
}

type PreviewBreakdown struct {
	MainPlayer *PlayerCalculation   `json:"mainPlayer"`
	Partners   []*PlayerCalculation `json:"partners"`
}

type CreatedRegistration struct {
	Id              string  `json:"id"`
	Category        string  `json:"category"`
	MainPlayerPrice float64 `json:"mainPlayerPrice"`
	PartnerPrice    float64 `json:"partnerPrice"`
	PlayerName      string  `json:"playerName"`
	PartnerName     string  `json:"partnerName,omitempty"`
}

type PayerBreakdown struct {
	CPF                   string  `json:"cpf"`
	Name                  string  `json:"name,omitempty"`
	ExistingRegistrations int     `json:"existingRegistrations"`
	NewPrice              float64 `json:"newPrice"`
}

type PriceBreakdown struct {
	MainPlayer PayerBreakdown   `json:"mainPlayer"`
	Partners   []PayerBreakdown `json:"partners"`
}

type RegisterResult struct {
	Registrations        []*CreatedRegistration `json:"registrations"`
	MainPlayerTotalPrice float64                `json:"mainPlayerTotalPrice"`
	TotalPartnerPrice    float64                `json:"totalPartnerPrice"`
	TotalPrice           float64                `json:"totalPrice"`
	Categories           []string               `json:"categories"`
	PriceBreakdown       PriceBreakdown         `json:"priceBreakdown"`
}

func normalizeParticipant(p repository.Participant) repository.Participant {
	return repository.Participant{
		Name:  strings.TrimSpace(p.Name),
		CPF:   cpf.Normalize(p.CPF),
		Email: strings.ToLower(strings.TrimSpace(p.Email)),
		Phone: strings.TrimSpace(p.Phone),
	}
}

// resolveRequest validates and normalizes a registration attempt against the
// tournament's category list. With requirePartners set, every category that
// needs a partner must come with a fully populated one; previews accept
// missing partners and price only the ones provided.
func resolveRequest(tournament *repository.Tournament, input RegisterInput, requirePartners bool) (*registrationRequest, error) {
	if len(input.Categories) == 0 {
		return nil, app_error.Validation("select at least one category")
	}
	request := &registrationRequest{
		player1:           normalizeParticipant(input.Player1),
		categories:        input.Categories,
		partners:          map[string]repository.Participant{},
		partnerCategories: map[string][]string{},
	}
	if !cpf.Validate(request.player1.CPF) {
		return nil, app_error.Validation("invalid cpf for main player")
	}
	for _, name := range input.Categories {
		category, ok := tournament.FindCategory(name)
		if !ok {
			return nil, app_error.Validation("category %s is not available in this tournament", name)
		}
		if !category.RequiresPartner() {
			continue
		}
		request.categoriesNeedingPartner = append(request.categoriesNeedingPartner, name)
		partner, provided := input.Partners[name]
		if !provided || partner.CPF == "" {
			if requirePartners {
				return nil, app_error.Validation("complete partner data is required for category %s", name)
			}
			continue
		}
		if requirePartners && (partner.Name == "" || partner.Email == "" || partner.Phone == "") {
			return nil, app_error.Validation("complete partner data is required for category %s", name)
		}
		normalized := normalizeParticipant(partner)
		if !cpf.Validate(normalized.CPF) {
			return nil, app_error.Validation("invalid cpf for partner in category %s", name)
		}
		request.partners[name] = normalized
		if normalized.CPF == request.player1.CPF {
			continue
		}
		if _, seen := request.partnerCategories[normalized.CPF]; !seen {
			request.partnerOrder = append(request.partnerOrder, normalized.CPF)
		}
		request.partnerCategories[normalized.CPF] = append(request.partnerCategories[normalized.CPF], name)
	}
	return request, nil
}

// PreviewPrice quotes a registration without persisting anything.
func (s *RegistrationService) PreviewPrice(tournamentId string, input RegisterInput) (*PricePreview, error) {
	tournament, err := s.getTournament(tournamentId)
	if err != nil {
		return nil, err
	}
	if input.Player1.CPF == "" {
		return nil, app_error.Validation("main player cpf is required")
	}
	request, err := resolveRequest(tournament, input, false)
	if err != nil {
		return nil, err
	}

	mainName := request.player1.Name
	if mainName == "" {
		mainName = "main player"
	}
	mainCalculation := s.calculationFor("main", request.player1.CPF, mainName, request.categories, tournament, len(request.categories))
	preview := &PricePreview{
		Tournament: PreviewTournament{
			Id:              tournament.Id,
			Name:            tournament.Name,
			BasePrice:       tournament.BasePrice,
			AdditionalPrice: tournament.AdditionalPrice,
		},
		Calculations: []*PlayerCalculation{mainCalculation},
		Breakdown:    PreviewBreakdown{MainPlayer: mainCalculation, Partners: []*PlayerCalculation{}},
	}
	for _, partnerCPF := range request.partnerOrder {
		partnerCategories := request.partnerCategories[partnerCPF]
		name := request.partners[partnerCategories[0]].Name
		if name == "" {
			name = "partner"
		}
		calculation := s.calculationFor("partner", partnerCPF, name, partnerCategories, tournament, len(partnerCategories))
		preview.Calculations = append(preview.Calculations, calculation)
		preview.Breakdown.Partners = append(preview.Breakdown.Partners, calculation)
	}
	for _, calculation := range preview.Calculations {
		preview.TotalPrice += calculation.TotalPrice
	}
	return preview, nil
}

func (s *RegistrationService) calculationFor(playerType, playerCPF, name string, categories []string, tournament *repository.Tournament, newCount int) *PlayerCalculation {
	pricing := s.pricingService.PriceFor(playerCPF, tournament.BasePrice, tournament.AdditionalPrice, newCount)
	return &PlayerCalculation{
		PlayerType:            playerType,
		CPF:                   playerCPF,
		Name:                  name,
		Categories:            categories,
		ExistingRegistrations: pricing.ExistingRegistrations,
		NewRegistrationsPrice: pricing.NewRegistrationsPrice,
		TotalPrice:            pricing.TotalPrice,
	}
}

// Register runs the full workflow and returns the created registrations
// with the per-payer price breakdown.
func (s *RegistrationService) Register(tournamentId string, input RegisterInput) (*RegisterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tournament, err := s.getTournament(tournamentId)
	if err != nil {
		return nil, err
	}

	// Validate
	if input.Player1.Name == "" || input.Player1.CPF == "" || input.Player1.Email == "" || input.Player1.Phone == "" {
		metrics.RegistrationsRejectedCounter.WithLabelValues("validation").Inc()
		return nil, app_error.Validation("complete main player data is required")
	}
	request, err := resolveRequest(tournament, input, true)
	if err != nil {
		metrics.RegistrationsRejectedCounter.WithLabelValues("validation").Inc()
		return nil, err
	}

	// CheckDuplicates: uniqueness holds per (tournament, category), with the
	// CPF counting in either role.
	tournamentRegistrations := s.registrationRepository.FindByTournament(tournamentId)
	for _, category := range request.categories {
		for _, reg := range tournamentRegistrations {
			if reg.Category != category {
				continue
			}
			if reg.Involves(request.player1.CPF) {
				metrics.RegistrationsRejectedCounter.WithLabelValues("duplicate").Inc()
				return nil, app_error.Conflict("cpf %s is already registered in category %s", request.player1.CPF, category)
			}
			if partner, ok := request.partners[category]; ok && reg.Involves(partner.CPF) {
				metrics.RegistrationsRejectedCounter.WithLabelValues("duplicate").Inc()
				return nil, app_error.Conflict("cpf %s is already registered in category %s", partner.CPF, category)
			}
		}
	}

	// CheckCapacity
	if tournament.MaxRegistrations != nil {
		counts := map[string]int{}
		for _, reg := range tournamentRegistrations {
			counts[reg.Category]++
		}
		for _, category := range request.categories {
			if counts[category] >= *tournament.MaxRegistrations {
				metrics.RegistrationsRejectedCounter.WithLabelValues("capacity").Inc()
				return nil, app_error.Conflict("registration limit reached for category %s", category)
			}
		}
	}

	// ComputePricing: one lump sum per payer; the per-record prices below
	// must add up to these.
	mainPricing := s.pricingService.PriceFor(request.player1.CPF, tournament.BasePrice, tournament.AdditionalPrice, len(request.categories))
	partnerPricings := map[string]PlayerPricing{}
	totalPartnerPrice := 0.0
	for _, partnerCPF := range request.partnerOrder {
		pricing := s.pricingService.PriceFor(partnerCPF, tournament.BasePrice, tournament.AdditionalPrice, len(request.partnerCategories[partnerCPF]))
		partnerPricings[partnerCPF] = pricing
		totalPartnerPrice += pricing.TotalPrice
	}

	now := time.Now()
	created := make([]*repository.Registration, 0, len(request.categories))
	for i, category := range request.categories {
		price := tournament.AdditionalPrice
		if i == 0 && mainPricing.ExistingRegistrations == 0 {
			price = tournament.BasePrice
		}
		registration := &repository.Registration{
			Id:           uuid.NewString(),
			TournamentId: tournamentId,
			Player1:      request.player1,
			Category:     category,
			Price:        price,
			RegisteredAt: now,
		}
		if partner, ok := request.partners[category]; ok {
			registration.Partner = &partner
			if partner.CPF != request.player1.CPF {
				idx := indexOf(request.partnerCategories[partner.CPF], category)
				registration.PartnerPrice = tournament.AdditionalPrice
				if idx == 0 && partnerPricings[partner.CPF].ExistingRegistrations == 0 {
					registration.PartnerPrice = tournament.BasePrice
				}
			}
		}
		created = append(created, registration)
	}

	// Persist: one batched write.
	if err := s.registrationRepository.AppendAll(created); err != nil {
		return nil, app_error.Internal(err)
	}
	metrics.RegistrationsCreatedCounter.Add(float64(len(created)))

	// UpdateDirectory
	for _, registration := range created {
		if err := s.playerService.Upsert(tournamentId, registration); err != nil {
			return nil, err
		}
	}

	// Notify: fire and forget, never part of the request's success path.
	if tournament.Webhook != "" {
		go s.notify(tournament, created)
	}

	result := &RegisterResult{
		Registrations: utils.Map(created, func(reg *repository.Registration) *CreatedRegistration {
			response := &CreatedRegistration{
				Id:              reg.Id,
				Category:        reg.Category,
				MainPlayerPrice: reg.Price,
				PartnerPrice:    reg.PartnerPrice,
				PlayerName:      reg.Player1.Name,
			}
			if reg.Partner != nil {
				response.PartnerName = reg.Partner.Name
			}
			return response
		}),
		MainPlayerTotalPrice: mainPricing.TotalPrice,
		TotalPartnerPrice:    totalPartnerPrice,
		TotalPrice:           mainPricing.TotalPrice + totalPartnerPrice,
		Categories:           request.categories,
		PriceBreakdown: PriceBreakdown{
			MainPlayer: PayerBreakdown{
				CPF:                   request.player1.CPF,
				Name:                  request.player1.Name,
				ExistingRegistrations: mainPricing.ExistingRegistrations,
				NewPrice:              mainPricing.TotalPrice,
			},
			Partners: utils.Map(request.partnerOrder, func(partnerCPF string) PayerBreakdown {
				return PayerBreakdown{
					CPF:                   partnerCPF,
					ExistingRegistrations: partnerPricings[partnerCPF].ExistingRegistrations,
					NewPrice:              partnerPricings[partnerCPF].TotalPrice,
				}
			}),
		},
	}
	return result, nil
}

func (s *RegistrationService) notify(tournament *repository.Tournament, registrations []*repository.Registration) {
	for _, registration := range registrations {
		if err := s.webhookClient.NotifyRegistration(tournament, registration); err != nil {
			metrics.WebhookFailedCounter.Inc()
			log.Printf("failed to send webhook notification for registration %s: %v", registration.Id, err)
			continue
		}
		metrics.WebhookSentCounter.Inc()
	}
}

// ListForTournament returns a tournament's registrations to its owner or an
// admin.
func (s *RegistrationService) ListForTournament(tournamentId string, username string, role repository.Role) ([]*repository.Registration, error) {
	tournament, err := s.getTournament(tournamentId)
	if err != nil {
		return nil, err
	}
	if !canManageTournament(username, role, tournament) {
		return nil, app_error.Forbidden("you can only view registrations of your own tournaments")
	}
	return s.registrationRepository.FindByTournament(tournamentId), nil
}

// ListAll returns every registration the requester may see.
func (s *RegistrationService) ListAll(username string, role repository.Role) []*repository.Registration {
	registrations := s.registrationRepository.FindAll()
	if role == repository.RoleAdmin {
		return registrations
	}
	owned := map[string]bool{}
	for _, tournament := range s.tournamentRepository.FindAll() {
		if tournament.CreatedBy == username {
			owned[tournament.Id] = true
		}
	}
	return utils.Filter(registrations, func(reg *repository.Registration) bool {
		return owned[reg.TournamentId]
	})
}

// Delete removes one registration and retracts it from the player
// directory.
func (s *RegistrationService) Delete(username string, role repository.Role, registrationId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	registration, err := s.registrationRepository.GetById(registrationId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return app_error.NotFound("registration not found")
		}
		return app_error.Internal(err)
	}
	if role != repository.RoleAdmin {
		tournament, err := s.tournamentRepository.GetById(registration.TournamentId)
		if err != nil || tournament.CreatedBy != username {
			return app_error.Forbidden("you can only delete registrations of your own tournaments")
		}
	}
	deleted, err := s.registrationRepository.DeleteById(registrationId)
	if err != nil {
		return app_error.Internal(err)
	}
	return s.playerService.Retract(deleted)
}

func (s *RegistrationService) getTournament(tournamentId string) (*repository.Tournament, error) {
	tournament, err := s.tournamentRepository.GetById(tournamentId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_error.NotFound("tournament not found")
		}
		return nil, app_error.Internal(err)
	}
	return tournament, nil
}

func indexOf(items []string, item string) int {
	for i, candidate := range items {
		if candidate == item {
			return i
		}
	}
	return -1
}
