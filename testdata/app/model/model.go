package model

import "time"

// Audit is embedded in the models.
type Audit struct {
	CreatedAt time.Time  `json:"created_at" validate:"required"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Foo is bound by id.
type Foo struct {
	Audit
	ID      int                    `json:"id" validate:"required"`
	Title   string                 `json:"title,omitempty"`
	Tags    []string               `json:"tags"`
	Owner   *User                  `json:"owner"`
	Meta    map[string]interface{} `json:"meta"`
	Score   float64
	Skipped string `json:"-"`
	secret  string
}

// User is bound by owner.
type User struct {
	Audit
	ID      int64  `json:"id" binding:"required"`
	Name    string `json:"name"`
	Avatar  []byte `json:"avatar"`
	Friends []User `json:"friends"`
}

// Status is not a struct.
type Status string
