/**
 * @description
 * FRED (Federal Reserve Economic Data) observation model.
 * Maps to the 'fred_observations' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

// FredObservation represents the latest value of one tracked FRED series
type FredObservation struct {
	ID         uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	SeriesID   string  `gorm:"column:series_id;index" json:"series_id"`
	SeriesName string  `gorm:"column:series_name" json:"series_name"`
	Value      float64 `gorm:"column:value;type:decimal(18,6)" json:"value"`
	Date       string  `gorm:"column:date;index" json:"date"`
	Timestamp  int64   `gorm:"column:timestamp" json:"timestamp"` // ms epoch derived from Date
}

// TableName overrides the table name used by FredObservation to `fred_observations`
func (FredObservation) TableName() string {
	return "fred_observations"
}
