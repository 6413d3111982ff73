// ABOUTME: Data models for the contact directory and account entities
// ABOUTME: Defines Contact (group/person), GroupRef, User, UserInfo and Area structs
package models

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Kind discriminates the two shapes of a directory record.
type Kind string

const (
	KindGroup  Kind = "G"
	KindPerson Kind = "P"
)

// Contact is a directory record. Groups may carry Children (persons); persons
// may reference the groups they belong to via Groups. Only one level of
// nesting exists.
type Contact struct {
	ID       int        `json:"id"`
	Type     Kind       `json:"typ"`
	Name     string     `json:"name"`
	Landline string     `json:"festnetz,omitempty"`
	Mobile   string     `json:"mobil,omitempty"`
	Email    string     `json:"email,omitempty"`
	Tasks    []string   `json:"aufgaben,omitempty"`
	Groups   []GroupRef `json:"gruppen,omitempty"`
	Address  string     `json:"adresse,omitempty"`
	Fax      string     `json:"fax,omitempty"`
	Children []Contact  `json:"children,omitempty"`

	// Level is view-only: 0 for a top-level row, 1 for an indented person row.
	Level int `json:"-"`
}

// GroupRef names a group a person belongs to.
type GroupRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// IsGroup reports whether the record is a group.
func (c Contact) IsGroup() bool { return c.Type == KindGroup }

// IsPerson reports whether the record is a person.
func (c Contact) IsPerson() bool { return c.Type == KindPerson }

// TasksText joins the task list the way it is displayed and sorted.
func (c Contact) TasksText() string {
	return strings.Join(c.Tasks, ", ")
}

// GroupNames joins the names of the groups a person belongs to.
func (c Contact) GroupNames() string {
	names := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// GroupOrAddress is the combined column: the address for groups and the
// membership list for persons.
func (c Contact) GroupOrAddress() string {
	if c.IsGroup() {
		return c.Address
	}
	return c.GroupNames()
}

// WithLevel returns a copy of c tagged with the given view level.
func (c Contact) WithLevel(level int) Contact {
	c.Level = level
	return c
}

// UnmarshalJSON accepts null for every optional string field.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       int           `json:"id"`
		Type     Kind          `json:"typ"`
		Name     *string       `json:"name"`
		Landline *string       `json:"festnetz"`
		Mobile   *string       `json:"mobil"`
		Email    *string       `json:"email"`
		Tasks    []string      `json:"aufgaben"`
		Groups   []nullableRef `json:"gruppen"`
		Address  *string       `json:"adresse"`
		Fax      *string       `json:"fax"`
		Children []Contact     `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Contact{
		ID:       raw.ID,
		Type:     raw.Type,
		Name:     deref(raw.Name),
		Landline: deref(raw.Landline),
		Mobile:   deref(raw.Mobile),
		Email:    deref(raw.Email),
		Tasks:    raw.Tasks,
		Address:  deref(raw.Address),
		Fax:      deref(raw.Fax),
		Children: raw.Children,
	}
	for _, g := range raw.Groups {
		c.Groups = append(c.Groups, GroupRef{ID: g.ID, Name: deref(g.Name)})
	}
	return nil
}

type nullableRef struct {
	ID   int     `json:"id"`
	Name *string `json:"name"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// User is the account returned by login and /me.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Employee is the staff record attached to an account. Every field may be null.
type Employee struct {
	LastName   *string `json:"name"`
	FirstName  *string `json:"vorname"`
	Occupation *string `json:"beruf"`
	Phone      *string `json:"kontakt1"`
	Mobile     *string `json:"mobil_telefon"`
	Email      *string `json:"email"`
}

// Membership is a group the current user belongs to.
type Membership struct {
	ID   int     `json:"id"`
	Name *string `json:"name"`
}

// UserInfo is the /me payload.
type UserInfo struct {
	User     User         `json:"user"`
	Employee *Employee    `json:"mitarbeiter"`
	Groups   []Membership `json:"gruppen"`
}

// DisplayName joins first and last name, falling back to the account name.
func (u UserInfo) DisplayName() string {
	if u.Employee != nil {
		var parts []string
		for _, p := range []*string{u.Employee.FirstName, u.Employee.LastName} {
			if p != nil && *p != "" {
				parts = append(parts, *p)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return u.User.Name
}

// DisplayEmail prefers the employee address over the account address.
func (u UserInfo) DisplayEmail() string {
	if u.Employee != nil && u.Employee.Email != nil && *u.Employee.Email != "" {
		return *u.Employee.Email
	}
	return u.User.Email
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// Occupation returns the employee's job title with HTML markup removed.
func (u UserInfo) Occupation() string {
	if u.Employee == nil || u.Employee.Occupation == nil {
		return ""
	}
	return strings.TrimSpace(htmlTag.ReplaceAllString(*u.Employee.Occupation, ""))
}

// Phones returns the landline and mobile numbers of the employee record.
func (u UserInfo) Phones() (phone, mobile string) {
	if u.Employee == nil {
		return "", ""
	}
	return deref(u.Employee.Phone), deref(u.Employee.Mobile)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	User      User   `json:"user"`
}

// Rights are the per-area permissions of the current user.
type Rights struct {
	Read  bool `json:"r"`
	Write bool `json:"w"`
	Admin bool `json:"a"`
}

// Area is a functional module of the backend the user may access.
type Area struct {
	ID          int     `json:"id"`
	Area        int     `json:"bereich"`
	Title       *string `json:"bezeichnung"`
	Description *string `json:"beschreibung"`
	Priority    int     `json:"prio"`
	Global      bool    `json:"global"`
	Rights      Rights  `json:"rights"`
}

// ContactsAreaID is the area id of the contact directory module.
const ContactsAreaID = 13
