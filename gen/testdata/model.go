package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        int64     `db:"autoincrement"`
	Email     string    `db:"unique,not_null"`
	Nickname  string
	Tags      []string
	Settings  map[string]json.RawMessage
	CreatedAt time.Time
	Password  string `db:"-"`
	age       int
}

type Order struct {
	ID     uuid.UUID `db:"pk"`
	Owner  int64     `db:"ref=users"`
	Total  float64
	Ch     chan int
}

type Membership struct {
	Org    int64 `db:"pk"`
	Member int64 `db:"pk,ref=users:id"`
}

func (Membership) TableName() string { return "memberships" }

type Dangling struct {
	ID     int64
	Parent int64 `db:"ref=missing"`
}

type BadAutoInc struct {
	ID string `db:"autoincrement"`
}

type Empty struct {
	Ch chan int
}
