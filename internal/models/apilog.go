/**
 * @description
 * Upstream API call log model.
 * Maps to the 'api_logs' table in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - One row per upstream call made by an ingestion job. Used to audit vendor
 *   usage against plan quotas; not consulted on the hot path.
 */

package models

// APICallLog records the outcome of one call to a third-party API
type APICallLog struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	APIName      string `gorm:"column:api_name;index" json:"api_name"`
	Endpoint     string `gorm:"column:endpoint" json:"endpoint"`
	StatusCode   int    `gorm:"column:status_code" json:"status_code"`
	CallCount    int    `gorm:"column:call_count" json:"call_count"`
	LastCall     int64  `gorm:"column:last_call" json:"last_call"` // ms epoch
	ErrorMessage string `gorm:"column:error_message" json:"error_message,omitempty"`
}

// TableName overrides the table name used by APICallLog to `api_logs`
func (APICallLog) TableName() string {
	return "api_logs"
}
