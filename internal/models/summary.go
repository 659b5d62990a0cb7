/**
 * @description
 * AI summary database model.
 * Maps to the 'ai_summaries' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Append-only: summaries are superseded, never replaced. The latest summary is
 *   the row with max generated_at for a given summary_type.
 * - key_factors and recommendations are Postgres TEXT[] columns handled by StringArray.
 */

package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Risk level values stored in ai_summaries.risk_level
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// SummaryTypeDaily is the summary_type written by the scheduled daily job
const SummaryTypeDaily = "daily"

// AISummary represents one generated narrative summary of current market risk
type AISummary struct {
	ID              uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SummaryType     string      `gorm:"column:summary_type;index:idx_summaries_type_time" json:"summary_type"`
	Category        string      `gorm:"column:category" json:"category,omitempty"`
	Summary         string      `gorm:"column:summary;type:text" json:"summary"`
	RiskLevel       string      `gorm:"column:risk_level" json:"risk_level"`
	KeyFactors      StringArray `gorm:"column:key_factors;type:text[]" json:"key_factors"`
	Recommendations StringArray `gorm:"column:recommendations;type:text[]" json:"recommendations"`
	GeneratedAt     int64       `gorm:"column:generated_at;index:idx_summaries_type_time" json:"generated_at"` // ms epoch
}

// TableName overrides the table name used by AISummary to `ai_summaries`
func (AISummary) TableName() string {
	return "ai_summaries"
}

// StringArray is a helper type to handle string arrays in Postgres (TEXT[])
type StringArray []string

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		// PostgreSQL returns arrays as strings like "{value1,value2,value3}"
		return a.parsePostgresArray(string(v))
	case string:
		return a.parsePostgresArray(v)
	default:
		return errors.New("type assertion failed for StringArray")
	}
}

// parsePostgresArray parses PostgreSQL array format: {value1,value2,value3}
func (a *StringArray) parsePostgresArray(s string) error {
	if s == "{}" || s == "" {
		*a = []string{}
		return nil
	}

	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")

	if s == "" {
		*a = []string{}
		return nil
	}

	// Split by comma, stripping quotes. Summary factors/recommendations are short
	// phrases without embedded commas, so naive splitting is acceptable here.
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = part[1 : len(part)-1]
		}
		result = append(result, part)
	}
	*a = result
	return nil
}

// Value implements the driver.Valuer interface
// Returns PostgreSQL array format: {value1,value2,value3}
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(a))
	for i, v := range a {
		if strings.ContainsAny(v, `,"\{} `) {
			escaped := strings.ReplaceAll(v, `\`, `\\`)
			escaped = strings.ReplaceAll(escaped, `"`, `\"`)
			quoted[i] = fmt.Sprintf(`"%s"`, escaped)
		} else {
			quoted[i] = v
		}
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}
