package data

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/riddlerbot/riddler/src/riddler/types"
)

// SaveAnalysis persists one scored trigger.
func SaveAnalysis(db *gorm.DB, a *types.Analysis) error {
	return db.Create(a).Error
}

// RecentAnalyses returns the newest rows, capped at limit.
func RecentAnalyses(db *gorm.DB, limit int) ([]types.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []types.Analysis
	err := db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// TriggerAnswered reports whether a reply was already posted for triggerID.
func TriggerAnswered(db *gorm.DB, triggerID string) bool {
	var row types.TriggerLog
	err := db.Where("trigger_id = ?", triggerID).First(&row).Error
	return !errors.Is(err, gorm.ErrRecordNotFound)
}

// MarkTriggerAnswered records triggerID so later passes skip it.
func MarkTriggerAnswered(db *gorm.DB, triggerID string) error {
	return db.Save(&types.TriggerLog{
		TriggerID:  triggerID,
		AnsweredAt: time.Now().UTC(),
	}).Error
}

// LoadCheckpoint returns the stored value for name, empty when unset.
func LoadCheckpoint(db *gorm.DB, name string) string {
	var cp types.Checkpoint
	if err := db.Where("name = ?", name).First(&cp).Error; err != nil {
		return ""
	}
	return cp.Value
}

// SaveCheckpoint upserts the value for name.
func SaveCheckpoint(db *gorm.DB, name, value string) error {
	return db.Save(&types.Checkpoint{
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}).Error
}
