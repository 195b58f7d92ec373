package notificacao

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notificador envia um aviso por webhook quando um novo consultor se
// cadastra na rede de alguém. Entrega é melhor-esforço: roda fora da
// requisição, com prazo curto, e falha só gera log.
type Notificador struct {
	URL     string
	Cliente *http.Client
	Logger  *zap.Logger
}

func NewNotificador(url string, logger *zap.Logger) *Notificador {
	return &Notificador{
		URL:     url,
		Cliente: &http.Client{Timeout: 5 * time.Second},
		Logger:  logger,
	}
}

func (n *Notificador) NovaIndicacao(consultorID, nome, parentID string) {
	if n.URL == "" {
		return
	}

	payload := map[string]string{
		"mensagem":     "Novo consultor cadastrado na sua rede",
		"consultor_id": consultorID,
		"nome":         nome,
		"parent_id":    parentID,
	}
	body, _ := json.Marshal(payload)

	go func() {
		resp, err := n.Cliente.Post(n.URL, "application/json", bytes.NewBuffer(body))
		if err != nil {
			n.Logger.Warn("erro ao enviar webhook de indicação", zap.Error(err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			n.Logger.Warn("webhook de indicação recusado",
				zap.Int("status", resp.StatusCode))
		}
	}()
}
