package model

import "time"

type Employee struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"userId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmployeeRef is the short form of an employee embedded in other payloads.
type EmployeeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e Employee) Ref() EmployeeRef {
	return EmployeeRef{ID: e.ID, Name: e.Name}
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
