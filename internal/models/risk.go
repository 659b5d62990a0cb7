/**
 * @description
 * Risk score database model.
 * Maps to the 'risk_scores' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Append-only: every risk run inserts one row per scored symbol.
 *   "Current" risk is the row with the max calculated_at per symbol.
 */

package models

// Trend direction values stored in risk_scores.trend_direction
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// RiskScore represents one risk assessment for a symbol at one evaluation instant
type RiskScore struct {
	ID              uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol          string  `gorm:"column:symbol;index:idx_risk_symbol_time" json:"symbol"`
	Category        string  `gorm:"column:category" json:"category"`
	RiskScore       int     `gorm:"column:risk_score" json:"risk_score"`
	PricePercentile float64 `gorm:"column:price_percentile;type:decimal(8,4)" json:"price_percentile"`
	VolatilityScore float64 `gorm:"column:volatility_score;type:decimal(8,4)" json:"volatility_score"`
	TrendDirection  string  `gorm:"column:trend_direction" json:"trend_direction"`
	CalculatedAt    int64   `gorm:"column:calculated_at;index:idx_risk_symbol_time" json:"calculated_at"` // ms epoch
}

// TableName overrides the table name used by RiskScore to `risk_scores`
func (RiskScore) TableName() string {
	return "risk_scores"
}
