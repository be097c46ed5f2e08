package models

// Position is one user's holding in one ticker symbol.
type Position struct {
	UserID   int64   `db:"user_id" json:"-"`
	Symbol   string  `db:"symbol" json:"symbol"`
	Name     string  `db:"name" json:"name"`
	Shares   float64 `db:"shares" json:"shares"`
	AvgPrice float64 `db:"avg_price" json:"avg_price"`
}

// Holding is a Position joined with its current market price.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Shares       float64 `json:"shares"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
}

// Summary aggregates the holdings of a portfolio.
type Summary struct {
	TotalValue       float64 `json:"total_value"`
	TotalInvestment  float64 `json:"total_investment"`
	TotalGain        float64 `json:"total_gain"`
	TotalGainPercent float64 `json:"total_gain_percent"`
	Positions        int     `json:"positions"`
}

// AddStockRequest is the body of a buy. AvgPrice is a pointer so that an
// absent field can be told apart from a zero price.
type AddStockRequest struct {
	Symbol   string   `json:"symbol" binding:"required,ticker"`
	Name     string   `json:"name" binding:"required,max=128"`
	Shares   float64  `json:"shares" binding:"required,gt=0,lte=1e12"`
	AvgPrice *float64 `json:"avgPrice" binding:"required,gte=0,lte=1e9"`
}

// RemoveStockRequest is the body of a sell.
type RemoveStockRequest struct {
	Symbol string  `json:"symbol" binding:"required,ticker"`
	Shares float64 `json:"shares" binding:"required,gt=0,lte=1e12"`
}

// MessageResponse carries a human readable status message.
type MessageResponse struct {
	Message string `json:"message"`
}
