package warehouse

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/citrus-stock/internal/domain"
)

// LabelSource identidad de una caja para el payload del código.
type LabelSource struct {
	BoxID       string
	BatchID     string
	ProductID   string
	ProductName string
	TotalBoxes  int
}

type labelPayload struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	BatchID     string `json:"batchId"`
	TotalBoxes  int    `json:"totalBoxes"`
	BoxID       string `json:"boxId"`
}

// BuildLabelContent serializa la identidad de la caja. Falla nombrando el primer campo ausente.
func BuildLabelContent(src LabelSource) (string, error) {
	switch {
	case src.BoxID == "":
		return "", missingField("box")
	case src.BatchID == "":
		return "", missingField("batch")
	case src.ProductID == "":
		return "", missingField("product")
	case src.ProductName == "":
		return "", missingField("product name")
	case src.TotalBoxes <= 0:
		return "", missingField("box count")
	}
	raw, err := json.Marshal(labelPayload{
		ProductID:   src.ProductID,
		ProductName: src.ProductName,
		BatchID:     src.BatchID,
		TotalBoxes:  src.TotalBoxes,
		BoxID:       src.BoxID,
	})
	if err != nil {
		return "", fmt.Errorf("serializar contenido: %w", err)
	}
	return string(raw), nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s es requerido", domain.ErrInvalidLabelContent, name)
}
