package model

import "errors"

// ErrRecordNotFound is returned by record stores when an identifier does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Record is a page of the external database. A record without Properties is a
// reference-only result and carries no task data.
type Record struct {
	Object         string     `json:"object,omitempty" firestore:"-"`
	ID             string     `json:"id" firestore:"-"`
	LastEditedTime string     `json:"last_edited_time,omitempty" firestore:"-"`
	Properties     Properties `json:"properties,omitempty" firestore:"properties,omitempty"`
}

// HasProperties reports whether the record is a full page rather than a reference.
func (r Record) HasProperties() bool {
	return r.Properties != nil
}

// Properties is the property bag of a record keyed by property name.
type Properties map[string]Property

// ApplyPatch returns a copy of r with each patched property replaced
// wholesale. Properties not in the patch keep their values.
func (r Record) ApplyPatch(patch Properties) Record {
	merged := make(Properties, len(r.Properties)+len(patch))
	for name, prop := range r.Properties {
		merged[name] = prop
	}
	for name, prop := range patch {
		if existing, ok := merged[name]; ok {
			prop.ID = existing.ID
			if prop.Type == "" {
				prop.Type = existing.Type
			}
		}
		merged[name] = prop
	}
	r.Properties = merged
	return r
}

type Property struct {
	ID     string        `json:"id,omitempty" firestore:"id,omitempty"`
	Type   string        `json:"type,omitempty" firestore:"type,omitempty"`
	Title  []RichText    `json:"title,omitempty" firestore:"title,omitempty"`
	Status *StatusOption `json:"status,omitempty" firestore:"status,omitempty"`
}

type RichText struct {
	Type      string       `json:"type,omitempty" firestore:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty" firestore:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty" firestore:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content" firestore:"content"`
}

type StatusOption struct {
	ID    string `json:"id,omitempty" firestore:"id,omitempty"`
	Name  string `json:"name,omitempty" firestore:"name,omitempty"`
	Color string `json:"color,omitempty" firestore:"color,omitempty"`
}

// Sort is one entry of a query's sort order.
type Sort struct {
	Timestamp string `json:"timestamp,omitempty"`
	Property  string `json:"property,omitempty"`
	Direction string `json:"direction"`
}

const (
	TimestampLastEdited = "last_edited_time"
	SortDescending      = "descending"
	SortAscending       = "ascending"
)
