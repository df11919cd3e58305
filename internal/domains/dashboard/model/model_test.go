package model_test

import (
	"testing"

	"lodge/internal/domains/dashboard/model"

	"github.com/stretchr/testify/assert"
)

func TestOccupancyPercent(t *testing.T) {
	tests := []struct {
		name     string
		summary  model.Summary
		expected int
	}{
		{name: "no rooms", summary: model.Summary{OccupiedRooms: 3}, expected: 0},
		{name: "empty hotel", summary: model.Summary{TotalRooms: 10}, expected: 0},
		{name: "full hotel", summary: model.Summary{TotalRooms: 4, OccupiedRooms: 4}, expected: 100},
		{name: "rounds down", summary: model.Summary{TotalRooms: 3, OccupiedRooms: 1}, expected: 33},
		{name: "rounds half up", summary: model.Summary{TotalRooms: 8, OccupiedRooms: 1}, expected: 13},
		{name: "two thirds", summary: model.Summary{TotalRooms: 3, OccupiedRooms: 2}, expected: 67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.summary.OccupancyPercent())
		})
	}
}
