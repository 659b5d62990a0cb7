/**
 * @description
 * Commodity price database models.
 * Maps to the 'commodity_prices' and 'commodity_history' tables in PostgreSQL.
 *
 * @dependencies
 * - gorm.io/gorm
 *
 * @notes
 * - Both tables are append-only. "Latest" price is a query-time concept
 *   (max timestamp per symbol), never an in-place update.
 * - commodity_history is deduplicated on (symbol, timestamp) via a unique index;
 *   inserts use ON CONFLICT DO NOTHING.
 */

package models

// CommodityPrice represents one observed spot price for a tracked commodity
type CommodityPrice struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string  `gorm:"column:symbol;index:idx_prices_symbol_time" json:"symbol"`
	Name      string  `gorm:"column:name" json:"name"`
	Category  string  `gorm:"column:category;index" json:"category"`
	Price     float64 `gorm:"column:price;type:decimal(18,6)" json:"price"`
	Unit      string  `gorm:"column:unit" json:"unit"`
	// Timestamp is the upstream quote time, FetchedAt the local pull time (both ms epoch)
	Timestamp int64 `gorm:"column:timestamp;index:idx_prices_symbol_time" json:"timestamp"`
	FetchedAt int64 `gorm:"column:fetched_at" json:"fetched_at"`
}

// TableName overrides the table name used by CommodityPrice to `commodity_prices`
func (CommodityPrice) TableName() string {
	return "commodity_prices"
}

// HistoryPoint represents one day of historical price data for a symbol
type HistoryPoint struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string  `gorm:"column:symbol;uniqueIndex:idx_history_symbol_time" json:"symbol"`
	Price     float64 `gorm:"column:price;type:decimal(18,6)" json:"price"`
	Timestamp int64   `gorm:"column:timestamp;uniqueIndex:idx_history_symbol_time" json:"timestamp"` // ms epoch
}

// TableName overrides the table name used by HistoryPoint to `commodity_history`
func (HistoryPoint) TableName() string {
	return "commodity_history"
}
