package models

import "time"

type Rabbit struct {
	ID        int64
	Name      string
	Birthdate *time.Time
	UserID    int64
	CreatedAt time.Time
}

// RabbitView is a rabbit together with its owner's summary.
type RabbitView struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Birthdate *time.Time  `json:"birthdate"`
	Owner     UserSummary `json:"user"`
}
