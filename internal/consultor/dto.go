package consultor

// ResumoConsultorDTO é a projeção usada no painel do consultor:
// dados básicos mais as métricas de indicação.
type ResumoConsultorDTO struct {
	ID                string `json:"id"`
	Nome              string `json:"name"`
	Email             string `json:"email"`
	Papel             Papel  `json:"role"`
	Status            Status `json:"status"`
	IndicacoesDiretas int    `json:"direct_referrals"`
	TamanhoEquipe     int    `json:"team_size"`
}

// MontarResumoConsultorDTO monta o resumo a partir do diretório já
// carregado. TamanhoEquipe conta a subárvore inteira (exclui o próprio
// consultor) com um percurso em largura limitado — um diretório com
// ciclo para no limite em vez de rodar para sempre.
func MontarResumoConsultorDTO(c Consultor, todos []Consultor, limiteProfundidade int) ResumoConsultorDTO {
	filhosPorPai := make(map[string][]string, len(todos))
	for _, outro := range todos {
		if outro.ParentID != nil {
			filhosPorPai[*outro.ParentID] = append(filhosPorPai[*outro.ParentID], outro.ID)
		}
	}

	diretas := len(filhosPorPai[c.ID])

	equipe := 0
	visitados := map[string]bool{c.ID: true}
	fronteira := filhosPorPai[c.ID]
	for nivel := 0; nivel < limiteProfundidade && len(fronteira) > 0; nivel++ {
		var proxima []string
		for _, id := range fronteira {
			if visitados[id] {
				continue
			}
			visitados[id] = true
			equipe++
			proxima = append(proxima, filhosPorPai[id]...)
		}
		fronteira = proxima
	}

	return ResumoConsultorDTO{
		ID:                c.ID,
		Nome:              c.Nome,
		Email:             c.Email,
		Papel:             c.Papel,
		Status:            c.Status,
		IndicacoesDiretas: diretas,
		TamanhoEquipe:     equipe,
	}
}
