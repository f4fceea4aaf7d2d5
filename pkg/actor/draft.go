// Package actor assembles generated actor rosters by partitioning a fixed
// ordinal walk across structural roles.
package actor

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/d20"
)

// Arc is a character arc tag from the arc catalogues.
type Arc string

// Trait is a personality trait tag.
type Trait string

// Sex selects which first-name list a draft draws from.
type Sex string

const (
	Female Sex = "female"
	Male   Sex = "male"
)

// Status is the structural role of a draft.
type Status string

const (
	StatusBoss       Status = "boss"
	StatusUnderboss  Status = "underboss"
	StatusWorker     Status = "worker"
	StatusOnMap      Status = "on_map"
	StatusLevelOne   Status = "level_one"
	StatusLevelTwo   Status = "level_two"
	StatusLevelThree Status = "level_three"
)

// Statuses lists all seven statuses in ordinal order.
var Statuses = []Status{StatusBoss, StatusUnderboss, StatusWorker, StatusOnMap, StatusLevelOne, StatusLevelTwo, StatusLevelThree}

// NameSet holds the name lists drafts draw from.
type NameSet struct {
	Female []string `json:"female" yaml:"female"`
	Male   []string `json:"male" yaml:"male"`
	Last   []string `json:"last" yaml:"last"`
}

// ActorDraft is one generated roster record.
type ActorDraft struct {
	Ordinal   int    `json:"ordinal"`
	Status    Status `json:"status"`
	Level     int    `json:"level"`
	Power     int    `json:"power"`
	Arc       Arc    `json:"arc"`
	Trait     Trait  `json:"trait"`
	Sex       Sex    `json:"sex"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Backstory string `json:"backstory,omitempty"`
	Secret    string `json:"secret,omitempty"`
}

// ID is the stable identifier of the draft within its pool.
func (a *ActorDraft) ID() string {
	return fmt.Sprintf("actor-%02d", a.Ordinal)
}

// Name returns the display name.
func (a *ActorDraft) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// ToActor projects the draft onto a d20 actor so it can be dropped into
// a game scenario. Hit points and armour class scale with level.
func (a *ActorDraft) ToActor() (*d20.Actor, error) {
	actor, err := d20.NewActor(a.ID()).
		WithHP(8 + 6*a.Level).
		WithAC(10 + a.Level).
		WithAttributes(map[string]int{
			"level":   a.Level,
			"power":   a.Power,
			"ordinal": a.Ordinal,
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor for %s: %w", a.ID(), err)
	}
	return actor, nil
}
