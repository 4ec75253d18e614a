package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ID is an identifier issued by the backend. The API is not consistent about
// sending ids as numbers or strings, so both are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("id must be a string or a number")
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// User is the profile snapshot returned by the backend at login.
type User struct {
	ID              ID     `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	IsEmailVerified bool   `json:"is_email_verified"`
	TherapistID     *ID    `json:"therapist_id,omitempty"`
}

// Valid reports whether the record carries the minimum needed to gate on.
func (u User) Valid() bool {
	return strings.TrimSpace(string(u.ID)) != ""
}

// Therapist is the optional assignment returned next to the user at login.
type Therapist struct {
	ID    ID     `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
