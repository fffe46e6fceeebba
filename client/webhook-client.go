package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"torneio/repository"
)

// WebhookClient delivers registration notifications to tournament-configured
// endpoints. Delivery is best effort: a bounded timeout, no retries, and
// failures are reported to the caller only for logging.
type WebhookClient struct {
	Client *http.Client
}

func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

type WebhookPayload struct {
	Event        string              `json:"event"`
	Tournament   TournamentSummary   `json:"tournament"`
	Registration RegistrationSummary `json:"registration"`
}

type TournamentSummary struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Location  string `json:"location"`
}

type RegistrationSummary struct {
	Id           string                  `json:"id"`
	Player1      repository.Participant  `json:"player1"`
	Partner      *repository.Participant `json:"partner"`
	Category     string                  `json:"category"`
	Price        float64                 `json:"price"`
	RegisteredAt time.Time               `json:"registeredAt"`
}

// NotifyRegistration posts one payload for one created registration.
func (c *WebhookClient) NotifyRegistration(tournament *repository.Tournament, registration *repository.Registration) error {
	payload := WebhookPayload{
		Event: "registration_completed",
		Tournament: TournamentSummary{
			Id:        tournament.Id,
			Name:      tournament.Name,
			StartDate: tournament.StartDate,
			EndDate:   tournament.EndDate,
			Location:  tournament.Location,
		},
		Registration: RegistrationSummary{
			Id:           registration.Id,
			Player1:      registration.Player1,
			Partner:      registration.Partner,
			Category:     registration.Category,
			Price:        registration.Price,
			RegisteredAt: registration.RegisteredAt,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tournament.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tournament-Registration-System/1.0")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
