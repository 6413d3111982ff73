// ABOUTME: Tests for directory and account data models
// ABOUTME: Validates null-tolerant decoding and display helpers
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactDecodesNullFields(t *testing.T) {
	payload := `[{"id":1,"typ":"G","name":"Kindergarten Nord","festnetz":null,"mobil":null,
		"email":"nord@example.org","aufgaben":["Leitung"],"adresse":"Hauptstr. 1","fax":null,
		"children":[{"id":10,"typ":"P","name":"Maria Keller","mobil":"0171","email":null,
			"gruppen":[{"id":1,"name":"Kindergarten Nord"},{"id":2,"name":null}]}]}]`

	var records []Contact
	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 1)

	group := records[0]
	assert.True(t, group.IsGroup())
	assert.Equal(t, "", group.Landline)
	assert.Equal(t, "Hauptstr. 1", group.Address)
	require.Len(t, group.Children, 1)

	child := group.Children[0]
	assert.True(t, child.IsPerson())
	assert.Equal(t, "0171", child.Mobile)
	assert.Equal(t, "Kindergarten Nord, ", child.GroupNames())
}

func TestContactLevelIsNotSerialized(t *testing.T) {
	data, err := json.Marshal(Contact{ID: 3, Type: KindPerson, Name: "A", Level: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Level")

	var back Contact
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, back.Level)
}

func TestGroupOrAddress(t *testing.T) {
	group := Contact{Type: KindGroup, Address: "Am Markt 2", Groups: []GroupRef{{ID: 1, Name: "x"}}}
	person := Contact{Type: KindPerson, Address: "ignored", Groups: []GroupRef{{ID: 1, Name: "Nord"}, {ID: 2, Name: "Süd"}}}

	assert.Equal(t, "Am Markt 2", group.GroupOrAddress())
	assert.Equal(t, "Nord, Süd", person.GroupOrAddress())
}

func TestUserInfoDisplayHelpers(t *testing.T) {
	first, last := "Anna", "Berg"
	beruf := "<p>Erzieherin</p>"
	mail := "anna@example.org"

	info := UserInfo{
		User:     User{ID: 1, Name: "aberg", Email: "account@example.org"},
		Employee: &Employee{FirstName: &first, LastName: &last, Occupation: &beruf, Email: &mail},
	}
	assert.Equal(t, "Anna Berg", info.DisplayName())
	assert.Equal(t, "anna@example.org", info.DisplayEmail())
	assert.Equal(t, "Erzieherin", info.Occupation())

	bare := UserInfo{User: User{Name: "aberg", Email: "account@example.org"}}
	assert.Equal(t, "aberg", bare.DisplayName())
	assert.Equal(t, "account@example.org", bare.DisplayEmail())
	assert.Equal(t, "", bare.Occupation())
}
