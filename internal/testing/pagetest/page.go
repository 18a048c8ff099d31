// Package pagetest provides a testify mock of the page handle used by the
// dispatcher and the interaction loop.
package pagetest

import (
	"github.com/stretchr/testify/mock"
)

// MockPage is a mock browser page. It satisfies computer.Page and agent.Page.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Click(x, y float64, button string) error {
	return m.Called(x, y, button).Error(0)
}

func (m *MockPage) MoveMouse(x, y float64) error {
	return m.Called(x, y).Error(0)
}

func (m *MockPage) ScrollBy(dx, dy int64) error {
	return m.Called(dx, dy).Error(0)
}

func (m *MockPage) PressKey(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockPage) TypeText(text string) error {
	return m.Called(text).Error(0)
}

func (m *MockPage) Screenshot() ([]byte, error) {
	args := m.Called()
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockPage) URL() string {
	return m.Called().String(0)
}
