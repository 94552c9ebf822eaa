package profile

import (
	"github.com/janisto/profile-sync/internal/platform/timeutil"
)

// Profile represents a profile response.
type Profile struct {
	ID        string        `json:"id"        doc:"Unique identifier"     example:"9b2f0c1e-5d7a-4c1b-9f0e-2a6b8d3c4e5f"`
	Name      string        `json:"name"      doc:"Display name"          example:"John Doe"`
	Email     string        `json:"email"     doc:"Email address"         example:"john@example.com"`
	Age       string        `json:"age"       doc:"Age, may be empty"     example:"30"`
	CreatedAt timeutil.Time `json:"createdAt" doc:"Creation timestamp"    example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt timeutil.Time `json:"updatedAt" doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`
}

// SavedProfile is a Profile echoed after a write, with a human-readable note.
type SavedProfile struct {
	Profile
	Message string `json:"message" doc:"Outcome message" example:"Profile created successfully!"`
}
