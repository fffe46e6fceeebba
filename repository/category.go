package repository

import (
	"encoding/json"
	"fmt"

	"torneio/utils"
)

// LegacyCategories are the fixed tags tournaments used before structured
// categories existed. X2 and Misto are doubles and imply a partner.
var LegacyCategories = []string{"X1", "X2", "Misto"}

// Category is either a legacy tag or a structured definition with a team
// size. The two shapes share one JSON field: a bare string for legacy tags,
// an object for structured categories.
type Category struct {
	Name           string
	PlayersPerTeam int
	legacy         bool
}

func LegacyCategory(tag string) Category {
	return Category{Name: tag, PlayersPerTeam: 2, legacy: true}
}

func StructuredCategory(name string, playersPerTeam int) Category {
	return Category{Name: name, PlayersPerTeam: playersPerTeam}
}

func (c Category) IsLegacy() bool {
	return c.legacy
}

func (c Category) DisplayName() string {
	return c.Name
}

// RequiresPartner reports whether the category is played in teams of more
// than one, i.e. a registration needs a fully populated partner.
func (c Category) RequiresPartner() bool {
	if c.legacy {
		return c.Name == "X2" || c.Name == "Misto"
	}
	return c.PlayersPerTeam > 1
}

func (c Category) MarshalJSON() ([]byte, error) {
	if c.legacy {
		return json.Marshal(c.Name)
	}
	return json.Marshal(struct {
		Name           string `json:"name"`
		PlayersPerTeam int    `json:"playersPerTeam"`
	}{c.Name, c.PlayersPerTeam})
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if !utils.Contains(LegacyCategories, tag) {
			return fmt.Errorf("invalid category: %s", tag)
		}
		*c = LegacyCategory(tag)
		return nil
	}
	var structured struct {
		Name           string `json:"name"`
		PlayersPerTeam int    `json:"playersPerTeam"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("invalid category format: %w", err)
	}
	*c = StructuredCategory(structured.Name, structured.PlayersPerTeam)
	return nil
}
