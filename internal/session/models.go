package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
)

// SignIn is an audit record of a successful login. It is never consulted when
// a token is verified.
type SignIn struct {
	ID         uuid.UUID      `json:"id"`
	Subject    uuid.UUID      `json:"-"`
	Role       role.Role      `json:"role"`
	DeviceID   string         `json:"device_id,omitempty"`
	DeviceName string         `json:"device_name,omitempty"`
	Platform   httpx.Platform `json:"platform,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
