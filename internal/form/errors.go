package form

import (
	"sort"
	"strings"
)

// NonFieldErrors is the key for errors that belong to the form as a whole
const NonFieldErrors = "__all__"

// Errors maps a field name to its validation messages
type Errors map[string][]string

// Add appends msg to the messages of field
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Get returns the messages of field
func (e Errors) Get(field string) []string {
	return e[field]
}

// First returns the first message of field, or "" when there is none
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the names of fields with errors, sorted
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field, msgs := range e {
		if len(msgs) > 0 {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// Empty reports whether no field has a message
func (e Errors) Empty() bool {
	return len(e.Fields()) == 0
}

// Error implements error so a failed form can travel through error returns
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}
