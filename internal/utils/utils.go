package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON escreve o payload como JSON com o status informado.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondErro escreve o corpo de erro padrão da API: {"error": "..."}.
func RespondErro(w http.ResponseWriter, status int, mensagem string) {
	RespondJSON(w, status, map[string]string{"error": mensagem})
}
