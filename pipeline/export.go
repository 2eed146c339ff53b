package pipeline

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-products/models"
)

// ExportError reports a sink failure while writing the result set.
// Unlike page and item failures it is fatal to the export step: there
// is no meaningful local recovery.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Export writes the aggregated record sequence through w in one ordered
// pass. The output depends only on the sequence itself.
func Export(products []*models.Product, w OutputWriter) error {
	if err := w.Write(products); err != nil {
		return &ExportError{Err: err}
	}
	return nil
}
