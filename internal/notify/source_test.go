package notify

import (
	"context"

	"github.com/mmynk/kinship/internal/models"
)

type emptySource struct{}

func (emptySource) Snapshot(context.Context) (*models.Snapshot, error) {
	return &models.Snapshot{}, nil
}

func (emptySource) GetSetting(context.Context, string) (*models.Setting, error) {
	return nil, nil
}
