package repository

import (
	"log"
	"time"

	"torneio/utils"
)

type Tournament struct {
	Id               string     `json:"id"`
	Name             string     `json:"name"`
	Categories       []Category `json:"categories"`
	MaxRegistrations *int       `json:"maxRegistrations"`
	StartDate        string     `json:"startDate"`
	EndDate          string     `json:"endDate"`
	Location         string     `json:"location"`
	BasePrice        float64    `json:"baseCategoryPrice"`
	AdditionalPrice  float64    `json:"additionalCategoryPrice"`
	Webhook          string     `json:"webhook"`
	CreatedBy        string     `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// CategoryNames returns the display names of all categories, legacy or
// structured.
func (t *Tournament) CategoryNames() []string {
	return utils.Map(t.Categories, Category.DisplayName)
}

// FindCategory resolves a requested category name against the tournament's
// category list.
func (t *Tournament) FindCategory(name string) (Category, bool) {
	for _, category := range t.Categories {
		if category.DisplayName() == name {
			return category, true
		}
	}
	return Category{}, false
}

type TournamentRepository struct {
	file *jsonFile[[]*Tournament]
}

func (r *TournamentRepository) FindAll() []*Tournament {
	return r.file.load()
}

func (r *TournamentRepository) GetById(tournamentId string) (*Tournament, error) {
	for _, tournament := range r.file.load() {
		if tournament.Id == tournamentId {
			return tournament, nil
		}
	}
	return nil, ErrNotFound
}

func (r *TournamentRepository) Create(tournament *Tournament) error {
	return r.file.update(func(tournaments []*Tournament) ([]*Tournament, error) {
		return append(tournaments, tournament), nil
	})
}

func (r *TournamentRepository) Delete(tournamentId string) error {
	return r.file.update(func(tournaments []*Tournament) ([]*Tournament, error) {
		remaining := utils.Filter(tournaments, func(t *Tournament) bool { return t.Id != tournamentId })
		if len(remaining) == len(tournaments) {
			return nil, ErrNotFound
		}
		return remaining, nil
	})
}

// MigrateOwnership assigns ownerless tournaments to the admin user. Kept for
// data files written before tournaments carried a creator.
func (r *TournamentRepository) MigrateOwnership() error {
	return r.file.update(func(tournaments []*Tournament) ([]*Tournament, error) {
		for _, tournament := range tournaments {
			if tournament.CreatedBy == "" {
				tournament.CreatedBy = "admin"
				log.Printf("migration: tournament %q assigned to admin", tournament.Name)
			}
		}
		return tournaments, nil
	})
}
