package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, IsValidStatus(s), "status %q should be valid", s)
	}

	invalid := []string{"", " ", "待跟进 ", " 待跟进", "pending", "Pending", "进行中", "已完成", "NotAStatus"}
	for _, s := range invalid {
		assert.False(t, IsValidStatus(s), "status %q should be invalid", s)
	}
}

func TestStatusesOrder(t *testing.T) {
	assert.Len(t, Statuses, 5)
	assert.Equal(t, DefaultStatus, Statuses[0])
	assert.Equal(t, "待跟进, 计划中, 搁置, 已解决, 丢弃", StatusList())
}

func TestTaskUpdateIsEmpty(t *testing.T) {
	title := "x"
	assert.True(t, TaskUpdate{}.IsEmpty())
	assert.False(t, TaskUpdate{Title: &title}.IsEmpty())
	assert.False(t, TaskUpdate{Status: &title}.IsEmpty())
}
