package history

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/diekoffieblik/brewcast/internal/models"
)

// DecodeHistory decodes an order-history payload without validating it.
func DecodeHistory(r io.Reader) (models.OrderHistory, error) {
	var payload models.OrderHistory
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return models.OrderHistory{}, fmt.Errorf("%w: invalid JSON: %v", models.ErrMalformedInput, err)
	}
	return payload, nil
}

// ParseHistory decodes an order-history payload and flattens it.
func ParseHistory(r io.Reader) ([]models.OrderLine, error) {
	payload, err := DecodeHistory(r)
	if err != nil {
		return nil, err
	}
	return Flatten(payload)
}

// Flatten turns nested orders into order lines, one per line item. Any missing
// required field fails the whole payload: partially ingested history would skew
// the frequency tables.
func Flatten(payload models.OrderHistory) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0)

	for i, order := range payload.Data {
		if order.UserID == "" {
			return nil, &models.InputError{Index: i, Line: -1, Field: "user_id", Reason: "is required"}
		}
		if order.CreatedAt == "" {
			return nil, &models.InputError{Index: i, Line: -1, Field: "created_at", Reason: "is required"}
		}
		createdAt, err := models.ParseTimestamp(order.CreatedAt)
		if err != nil {
			return nil, &models.InputError{Index: i, Line: -1, Field: "created_at", Reason: "is not a valid timestamp"}
		}

		for j, product := range order.OrderProducts {
			if product.ProductID == "" {
				return nil, &models.InputError{Index: i, Line: j, Field: "product_id", Reason: "is required"}
			}
			quantity := 1
			if product.Quantity != nil {
				quantity = *product.Quantity
			}
			if quantity <= 0 {
				return nil, &models.InputError{Index: i, Line: j, Field: "quantity", Reason: "must be positive"}
			}

			lines = append(lines, models.OrderLine{
				ProductID:  string(product.ProductID),
				Quantity:   quantity,
				OccurredAt: createdAt,
				UserID:     order.UserID,
			})
		}
	}

	return lines, nil
}
