package model

type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"` // last_edited_time of the record, verbatim
	Type      string `json:"type,omitempty"`
	Color     string `json:"color,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// TaskUpdate carries a partial update. Nil fields are left untouched in the store.
type TaskUpdate struct {
	Title  *string
	Status *string
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Status == nil
}

type CreateInput struct {
	Title  string
	Status string // empty means DefaultStatus
}
