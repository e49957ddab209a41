package athlete

import (
	"fmt"
	"time"
)

type Athlete struct {
	ID        int64     `json:"athlete_id" db:"athlete_id"`
	FirstName string    `json:"firstname" db:"firstname"`
	LastName  *string   `json:"lastname,omitempty" db:"lastname"`
	PhotoURL  *string   `json:"photo_url,omitempty" db:"photo_url"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UpsertAthleteRequest struct {
	ID        int64   `json:"athlete_id"`
	FirstName string  `json:"firstname"`
	LastName  *string `json:"lastname,omitempty"`
	PhotoURL  *string `json:"photo_url,omitempty"`
}

func (a Athlete) DisplayName() string {
	if a.LastName != nil && *a.LastName != "" {
		return fmt.Sprintf("%s %s", a.FirstName, *a.LastName)
	}
	if a.FirstName == "" {
		return fmt.Sprintf("Athlete %d", a.ID)
	}
	return a.FirstName
}

// Directory resolves athlete ids to display metadata.
type Directory map[int64]Athlete

func (d Directory) Name(id int64) string {
	if a, ok := d[id]; ok {
		return a.DisplayName()
	}
	return Athlete{ID: id}.DisplayName()
}

func (d Directory) Photo(id int64) *string {
	if a, ok := d[id]; ok {
		return a.PhotoURL
	}
	return nil
}
