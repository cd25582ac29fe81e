package shop

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("shop not found")

// Shop is an installed shop and the offline or online token it granted.
type Shop struct {
	ID          string
	Domain      string
	AccessToken string
	Scope       string
	Plan        string
	Status      string
	InstalledAt time.Time
}
