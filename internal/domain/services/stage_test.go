package services

import (
	"testing"

	"honeypot-lab/internal/domain/models"
)

func TestNextStage(t *testing.T) {
	withURL := models.NewIntelligence()
	withURL.URLs.Add("http://fake.example")

	withPhone := models.NewIntelligence()
	withPhone.PhoneNumbers.Add("9876543210")

	tests := []struct {
		name  string
		count int
		intel models.Intelligence
		want  models.Stage
	}{
		{"first message", 1, models.NewIntelligence(), models.StageTrust},
		{"second message", 2, withURL, models.StageTrust},
		{"mid conversation no critical intel", 4, models.NewIntelligence(), models.StageExtract},
		{"mid conversation with critical intel", 5, withURL, models.StageExtract},
		{"long conversation no critical intel", 9, models.NewIntelligence(), models.StageExtract},
		{"long conversation phone only", 9, withPhone, models.StageExtract},
		{"long conversation with critical intel", 8, withURL, models.StageStall},
		{"boundary at six messages", 6, withURL, models.StageExtract},
		{"boundary at seven messages", 7, withURL, models.StageStall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStage(tt.count, tt.intel); got != tt.want {
				t.Errorf("NextStage(%d) = %q, want %q", tt.count, got, tt.want)
			}
		})
	}
}
