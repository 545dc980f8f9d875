package handler

import (
	"encoding/json"
	"net/http"
)

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// Health はヘルスチェックを処理する。
// コンテナオーケストレーターの死活監視用で、依存先の疎通確認は行わない。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}
