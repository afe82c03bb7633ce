package model

import (
	"strings"

	"github.com/google/uuid"
)

// Guest is a person who can hold reservations.  Email addresses are unique
// across guests.
//
// Fields:
//  ID    – UUID string identifier.
//  Name  – full name, trimmed and non-empty.
//  Email – contact address; must contain '@' and a '.' in the domain part.
//  Phone – contact phone number, trimmed and non-empty.
type Guest struct {
	ID    string `json:"id"`    // guests.id
	Name  string `json:"name"`  // guests.name
	Email string `json:"email"` // guests.email
	Phone string `json:"phone"` // guests.phone
}

// GuestPatch carries the optional fields of a guest update.
type GuestPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// NewGuest trims and validates the given fields and returns a guest with a
// fresh identifier.
func NewGuest(name, email, phone string) (*Guest, error) {
	g := &Guest{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: strings.TrimSpace(phone),
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks the field constraints of a guest.
func (g *Guest) Validate() error {
	switch {
	case g.Name == "":
		return validationError("guest name is required")
	case g.Email == "":
		return validationError("guest email is required")
	case g.Phone == "":
		return validationError("guest phone is required")
	case !ValidEmail(g.Email):
		return validationError("invalid email address %q", g.Email)
	}
	return nil
}

// Apply copies the non-nil, trimmed fields of p onto the guest.  The guest
// is left unchanged when the result does not validate.
func (g *Guest) Apply(p GuestPatch) error {
	next := *g
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		next.Email = strings.TrimSpace(*p.Email)
	}
	if p.Phone != nil {
		next.Phone = strings.TrimSpace(*p.Phone)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*g = next
	return nil
}

// ValidEmail reports whether s has an '@' followed by a domain containing a dot.
func ValidEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

// Record returns the storage shape of the guest.
func (g *Guest) Record() Record {
	return Record{
		"id":    g.ID,
		"name":  g.Name,
		"email": g.Email,
		"phone": g.Phone,
	}
}

// GuestFromRecord decodes a stored guest record.
func GuestFromRecord(rec Record) (*Guest, error) {
	var (
		g   Guest
		err error
	)
	if g.ID, err = rec.str("id"); err != nil {
		return nil, err
	}
	if g.Name, err = rec.str("name"); err != nil {
		return nil, err
	}
	if g.Email, err = rec.str("email"); err != nil {
		return nil, err
	}
	if g.Phone, err = rec.str("phone"); err != nil {
		return nil, err
	}
	return &g, nil
}
