package services

import "taskboard/model"

// RecordToTask maps a full record onto a Task. Missing or malformed properties
// fall back to defaults instead of failing.
func RecordToTask(record model.Record) model.Task {
	title := model.DefaultTitle
	if prop, ok := record.Properties[model.TitleProperty]; ok && len(prop.Title) > 0 {
		title = segmentText(prop.Title[0])
	}

	status := model.DefaultStatus
	if prop, ok := record.Properties[model.StatusProperty]; ok && prop.Status != nil && prop.Status.Name != "" {
		status = prop.Status.Name
	}

	return model.Task{
		ID:        record.ID,
		Title:     title,
		Status:    status,
		UpdatedAt: record.LastEditedTime,
		Type:      model.DefaultType,
		Color:     model.DefaultColor,
		Icon:      model.DefaultIcon,
	}
}

// segmentText prefers the store-rendered plain text and falls back to the
// written content for stores that echo the write payload back.
func segmentText(segment model.RichText) string {
	if segment.PlainText != "" {
		return segment.PlainText
	}
	if segment.Text != nil {
		return segment.Text.Content
	}
	return ""
}

// TaskUpdateToRecordPatch builds the property patch for the fields present in
// update. Absent fields are omitted so the store leaves them untouched.
func TaskUpdateToRecordPatch(update model.TaskUpdate) model.Properties {
	patch := model.Properties{}
	if update.Title != nil {
		patch[model.TitleProperty] = titleProperty(*update.Title)
	}
	if update.Status != nil {
		patch[model.StatusProperty] = statusProperty(*update.Status)
	}
	return patch
}

func titleProperty(title string) model.Property {
	return model.Property{
		Title: []model.RichText{
			{Text: &model.TextContent{Content: title}},
		},
	}
}

func statusProperty(status string) model.Property {
	return model.Property{
		Status: &model.StatusOption{Name: status},
	}
}
