package contact

import (
	"strings"
	"time"
)

// Record is one contact as exchanged with the vCard codec and persisted by the store.
type Record struct {
	DisplayName string   `json:"display_name"`
	Name        *Name    `json:"name,omitempty"`
	Company     *Company `json:"company,omitempty"`

	Numbers       []Number       `json:"numbers,omitempty"`
	Emails        []Email        `json:"emails,omitempty"`
	Addresses     []Address      `json:"addresses,omitempty"`
	Nicknames     []Nickname     `json:"nicknames,omitempty"`
	URLs          []URL          `json:"urls,omitempty"`
	Events        []Event        `json:"events,omitempty"`
	Notes         []Note         `json:"notes,omitempty"`
	Photos        []Photo        `json:"photos,omitempty"`
	Messengers    []Messenger    `json:"messengers,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`

	UID      *string    `json:"uid,omitempty"`
	Revision *time.Time `json:"revision,omitempty"`
}

// Name is the structured name.
type Name struct {
	First          string `json:"first,omitempty"`
	Last           string `json:"last,omitempty"`
	Middle         string `json:"middle,omitempty"`
	Prefix         string `json:"prefix,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	PhoneticFirst  string `json:"phonetic_first,omitempty"`
	PhoneticMiddle string `json:"phonetic_middle,omitempty"`
	PhoneticLast   string `json:"phonetic_last,omitempty"`
}

// Empty reports whether no component is set.
func (n *Name) Empty() bool {
	return n == nil || (n.First == "" && n.Last == "" && n.Middle == "" && n.Prefix == "" &&
		n.Suffix == "" && n.PhoneticFirst == "" && n.PhoneticMiddle == "" && n.PhoneticLast == "")
}

// Company is the organization block. Logo is a file path.
type Company struct {
	Name          string `json:"name,omitempty"`
	Department    string `json:"department,omitempty"`
	JobTitle      string `json:"job_title,omitempty"`
	Role          string `json:"role,omitempty"`
	Logo          string `json:"logo,omitempty"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
	PhoneticName  string `json:"phonetic_name,omitempty"`
	AssistantName string `json:"assistant_name,omitempty"`
}

// Empty reports whether no field is set.
func (c *Company) Empty() bool {
	return c == nil || *c == Company{}
}

type Number struct {
	Type      TypeSet `json:"type"`
	Label     string  `json:"label,omitempty"`
	IsDefault bool    `json:"is_default,omitempty"`
	Number    string  `json:"number"`
}

type Email struct {
	Type      TypeSet `json:"type"`
	Label     string  `json:"label,omitempty"`
	IsDefault bool    `json:"is_default,omitempty"`
	Address   string  `json:"address"`
}

// Address is a postal address; the component order follows ADR.
type Address struct {
	Type       TypeSet `json:"type"`
	Label      string  `json:"label,omitempty"`
	IsDefault  bool    `json:"is_default,omitempty"`
	POBox      string  `json:"pobox,omitempty"`
	Extended   string  `json:"extended,omitempty"`
	Street     string  `json:"street,omitempty"`
	Locality   string  `json:"locality,omitempty"`
	Region     string  `json:"region,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
}

// Components returns the seven ADR components in wire order.
func (a *Address) Components() []string {
	return []string{a.POBox, a.Extended, a.Street, a.Locality, a.Region, a.PostalCode, a.Country}
}

// Empty reports whether every component is blank.
func (a *Address) Empty() bool {
	for _, c := range a.Components() {
		if c != "" {
			return false
		}
	}
	return true
}

type Nickname struct {
	Name string `json:"name"`
}

type URL struct {
	Type  TypeSet `json:"type"`
	Label string  `json:"label,omitempty"`
	URL   string  `json:"url"`
}

// Event is a dated entry. Date is YYYYMMDD.
type Event struct {
	Type  TypeSet `json:"type"`
	Label string  `json:"label,omitempty"`
	Date  int     `json:"date"`
}

type Note struct {
	Text string `json:"text"`
}

// Photo references an image file on disk.
type Photo struct {
	Path      string `json:"path"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type Messenger struct {
	Type   TypeSet `json:"type"`
	Label  string  `json:"label,omitempty"`
	Handle string  `json:"handle"`
}

type Relationship struct {
	Type  TypeSet `json:"type"`
	Label string  `json:"label,omitempty"`
	Name  string  `json:"name"`
}

// Empty reports whether no field group is populated.
func (r *Record) Empty() bool {
	if r == nil {
		return true
	}
	return r.DisplayName == "" && r.Name.Empty() && r.Company.Empty() &&
		len(r.Numbers) == 0 && len(r.Emails) == 0 && len(r.Addresses) == 0 &&
		len(r.Nicknames) == 0 && len(r.URLs) == 0 && len(r.Events) == 0 &&
		len(r.Notes) == 0 && len(r.Photos) == 0 && len(r.Messengers) == 0 &&
		len(r.Relationships) == 0 && r.UID == nil && r.Revision == nil
}

// DeriveDisplayName picks the first non-empty source in order: structured name,
// company name, nickname, phone number, email.
func DeriveDisplayName(r *Record) string {
	if r == nil {
		return ""
	}
	if r.Name != nil {
		var parts []string
		for _, p := range []string{r.Name.Prefix, r.Name.First, r.Name.Middle, r.Name.Last, r.Name.Suffix} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if r.Company != nil {
		if n := strings.TrimSpace(r.Company.Name); n != "" {
			return n
		}
	}
	for _, n := range r.Nicknames {
		if s := strings.TrimSpace(n.Name); s != "" {
			return s
		}
	}
	for _, n := range r.Numbers {
		if s := strings.TrimSpace(n.Number); s != "" {
			return s
		}
	}
	for _, e := range r.Emails {
		if s := strings.TrimSpace(e.Address); s != "" {
			return s
		}
	}
	return ""
}
