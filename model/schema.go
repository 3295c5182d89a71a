package model

import "strings"

// Property names of the task database. They must match the store's configured
// property names exactly, otherwise every record converts to defaults.
const (
	TitleProperty  = "标题"
	StatusProperty = "状态"
)

// Property types expected for the two mapped properties.
const (
	TitlePropertyType  = "title"
	StatusPropertyType = "status"
)

const (
	StatusPending   = "待跟进"
	StatusPlanned   = "计划中"
	StatusOnHold    = "搁置"
	StatusResolved  = "已解决"
	StatusDiscarded = "丢弃"
)

// Statuses is the closed set of status names a task may carry.
var Statuses = []string{
	StatusPending,
	StatusPlanned,
	StatusOnHold,
	StatusResolved,
	StatusDiscarded,
}

const (
	DefaultStatus = StatusPending
	DefaultTitle  = "Untitled"
	DefaultType   = "任务"
	DefaultColor  = "#3b82f6"
	DefaultIcon   = "check_circle"
)

// IsValidStatus reports whether candidate is exactly one of Statuses.
func IsValidStatus(candidate string) bool {
	for _, s := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// StatusList renders Statuses for error messages.
func StatusList() string {
	return strings.Join(Statuses, ", ")
}
