package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justice-collab/disruption-cli/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  model.Classification
	}{
		{"well above major", 0.9, model.ClassMajor},
		{"exactly major", 0.75, model.ClassMajor},
		{"just below major", 0.7499999, model.ClassSignificant},
		{"exactly significant", 0.50, model.ClassSignificant},
		{"exactly moderate", 0.25, model.ClassModerate},
		{"exactly minor", 0.10, model.ClassMinor},
		{"just below minor", 0.0999999, model.ClassStable},
		{"zero", 0, model.ClassStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.score))
		})
	}
}

func TestClassificationLabels(t *testing.T) {
	// The label strings land verbatim in CSV exports and the store, so
	// they are part of the output contract.
	assert.Equal(t, "major_disruption", string(Classify(0.8)))
	assert.Equal(t, "significant_disruption", string(Classify(0.6)))
	assert.Equal(t, "moderate_disruption", string(Classify(0.3)))
	assert.Equal(t, "minor_disruption", string(Classify(0.15)))
	assert.Equal(t, "stable", string(Classify(0.05)))
}

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		name     string
		velocity float64
		want     model.Direction
	}{
		{"strong progressive", 1.5, model.DirectionProgressive},
		{"just above deadband", 0.1000001, model.DirectionProgressive},
		{"exactly deadband", 0.1, model.DirectionNeutral},
		{"zero", 0, model.DirectionNeutral},
		{"exactly negative deadband", -0.1, model.DirectionNeutral},
		{"just below negative deadband", -0.1000001, model.DirectionTraditional},
		{"strong traditional", -2, model.DirectionTraditional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DirectionOf(tt.velocity))
		})
	}
}
