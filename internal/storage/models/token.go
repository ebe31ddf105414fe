// internal/storage/models/token.go
package models

import "time"

// Token хранит состояние токена на кривой.
// CurrentSupply и RaisedAmount меняются только атомарно вместе с записью сделки.
type Token struct {
	Address       string     `json:"address"`
	Name          string     `json:"name"`
	Symbol        string     `json:"symbol"`
	Creator       string     `json:"creator"`
	CurrentSupply float64    `json:"current_supply"`
	RaisedAmount  float64    `json:"raised_amount"`
	Graduated     bool       `json:"graduated"`
	GraduatedAt   *time.Time `json:"graduated_at,omitempty"`
	Version       uint64     `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Clone возвращает независимую копию
func (t *Token) Clone() *Token {
	c := *t
	if t.GraduatedAt != nil {
		at := *t.GraduatedAt
		c.GraduatedAt = &at
	}
	return &c
}
