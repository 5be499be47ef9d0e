package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewLoan 新借阅记录为ACTIVE,应还时间按期限推算
func TestNewLoan(t *testing.T) {
	l := NewLoan(42, 7, 14*24*time.Hour)

	assert.Equal(t, uint(42), l.BookID)
	assert.Equal(t, uint(7), l.UserID)
	assert.Equal(t, TypeLoan, l.Type)
	assert.Equal(t, StatusActive, l.Status)
	assert.Nil(t, l.ReturnDate)
	assert.WithinDuration(t, l.LoanDate.Add(14*24*time.Hour), l.DueDate, time.Second)
}

// TestStatusTransitions 状态机:只有ACTIVE→COMPLETED和ACTIVE→CANCELLED合法
func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusActive, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusActive, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, c := range cases {
		l := NewLoan(1, 1, time.Hour)
		l.Status = c.from

		assert.Equal(t, c.allowed, l.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)

		err := l.TransitionTo(c.to)
		if c.allowed {
			assert.NoError(t, err)
			assert.Equal(t, c.to, l.Status)
		} else {
			assert.ErrorIs(t, err, ErrInvalidLoanState)
			assert.Equal(t, c.from, l.Status)
		}
	}
}

// TestComplete 归还写入ReturnDate,重复归还失败
func TestComplete(t *testing.T) {
	l := NewLoan(1, 1, time.Hour)

	err := l.Complete()
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, l.Status)
	assert.NotNil(t, l.ReturnDate)

	returnDate := *l.ReturnDate
	err = l.Complete()
	assert.ErrorIs(t, err, ErrInvalidLoanState)
	assert.Equal(t, returnDate, *l.ReturnDate)
}

// TestCancel 取消不写ReturnDate,已归还的不能取消
func TestCancel(t *testing.T) {
	l := NewLoan(1, 1, time.Hour)

	assert.NoError(t, l.Cancel())
	assert.Equal(t, StatusCancelled, l.Status)
	assert.Nil(t, l.ReturnDate)

	l2 := NewLoan(1, 1, time.Hour)
	assert.NoError(t, l2.Complete())
	assert.ErrorIs(t, l2.Cancel(), ErrInvalidLoanState)
}

// TestIsOverdue 逾期只影响展示,不改变状态
func TestIsOverdue(t *testing.T) {
	l := NewLoan(1, 1, time.Hour)
	assert.False(t, l.IsOverdue())

	l.DueDate = time.Now().Add(-time.Hour)
	assert.True(t, l.IsOverdue())
	assert.Equal(t, StatusActive, l.Status)

	// 终态记录不算逾期
	assert.NoError(t, l.Complete())
	assert.False(t, l.IsOverdue())
}

// TestStatusString 状态名与解析
func TestStatusString(t *testing.T) {
	assert.Equal(t, "ACTIVE", StatusActive.String())
	assert.Equal(t, "COMPLETED", StatusCompleted.String())
	assert.Equal(t, "CANCELLED", StatusCancelled.String())

	s, ok := ParseStatus("COMPLETED")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)

	_, ok = ParseStatus("RETURNED")
	assert.False(t, ok)
}
