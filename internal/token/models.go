package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/role"
)

// Payload is the role-specific part of a claim. Only the three payload types
// in this package implement it.
type Payload interface {
	Role() role.Role
	payload()
}

type GovernmentPayload struct {
	ProvinceID   string `json:"province_id"`
	ProvinceName string `json:"province_name"`
}

type SchoolPayload struct {
	SchoolID     uuid.UUID `json:"school_id"`
	NPSN         string    `json:"npsn"`
	Name         string    `json:"name"`
	GovernmentID uuid.UUID `json:"government_id"`
}

type StudentPayload struct {
	StudentNumber string    `json:"student_number"`
	Name          string    `json:"name"`
	Class         string    `json:"class"`
	Grade         int       `json:"grade"`
	SchoolID      uuid.UUID `json:"school_id"`
}

func (GovernmentPayload) Role() role.Role { return role.Government }
func (SchoolPayload) Role() role.Role     { return role.School }
func (StudentPayload) Role() role.Role    { return role.Student }

func (GovernmentPayload) payload() {}
func (SchoolPayload) payload()     {}
func (StudentPayload) payload()    {}

// Claims is the verified identity carried by a session token.
type Claims struct {
	Subject string    `json:"id"`
	Role    role.Role `json:"role"`
	Payload Payload   `json:"payload"`
}

// NewClaims derives the role from the payload variant.
func NewClaims(subject string, p Payload) *Claims {
	return &Claims{Subject: subject, Role: p.Role(), Payload: p}
}

// Government reports false on a nil receiver, as do School and Student.
func (c *Claims) Government() (GovernmentPayload, bool) {
	if c == nil {
		return GovernmentPayload{}, false
	}
	p, ok := c.Payload.(GovernmentPayload)
	return p, ok
}

func (c *Claims) School() (SchoolPayload, bool) {
	if c == nil {
		return SchoolPayload{}, false
	}
	p, ok := c.Payload.(SchoolPayload)
	return p, ok
}

func (c *Claims) Student() (StudentPayload, bool) {
	if c == nil {
		return StudentPayload{}, false
	}
	p, ok := c.Payload.(StudentPayload)
	return p, ok
}

// wireClaims is the JWT body. Exactly one payload field is set, the one
// matching Role.
type wireClaims struct {
	Role       role.Role          `json:"role"`
	Government *GovernmentPayload `json:"government,omitempty"`
	School     *SchoolPayload     `json:"school,omitempty"`
	Student    *StudentPayload    `json:"student,omitempty"`
	jwt.RegisteredClaims
}

func (w *wireClaims) setPayload(p Payload) {
	switch v := p.(type) {
	case GovernmentPayload:
		w.Government = &v
	case SchoolPayload:
		w.School = &v
	case StudentPayload:
		w.Student = &v
	}
}

func (w *wireClaims) payload() (Payload, error) {
	var (
		p   Payload
		set int
	)
	if w.Government != nil {
		p, set = *w.Government, set+1
	}
	if w.School != nil {
		p, set = *w.School, set+1
	}
	if w.Student != nil {
		p, set = *w.Student, set+1
	}
	if !w.Role.Valid() {
		return nil, ErrUnknownRole
	}
	if set != 1 || p.Role() != w.Role {
		return nil, ErrPayloadMismatch
	}
	return p, nil
}
