package brackets

import (
	"context"

	"github.com/kumiteops/kumite-system/models"
)

type GenerateParams struct {
	EventID   string
	EventCode string
	Athletes  []*models.Athlete
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateParams) ([]*models.Match, error)

	GetName() string
}
