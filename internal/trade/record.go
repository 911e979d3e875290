package trade

import "encoding/json"

// Record is one element of the backend's trades array.
// Amounts are raw integers in decimal text; json.Number also accepts
// backends that send them unquoted.
type Record struct {
	ID        int64       `json:"id"`
	Owner     string      `json:"owner"`
	Asset0    string      `json:"asset0"`
	Asset1    string      `json:"asset1"`
	Amount0   json.Number `json:"amount0"`
	Amount1   json.Number `json:"amount1"`
	Timestamp int64       `json:"timestamp"`
}
