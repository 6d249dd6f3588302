// Package output serializes recalculation results to JSON.
package output

import (
	"io"

	json "github.com/bytedance/sonic"

	"github.com/ekra-ltd/reogrid-go/pkg/reogrid/models"
)

// api sorts map keys so that equal results serialize identically.
var api = json.ConfigStd

// ToJSON serializes v. With pretty set the output is indented by two spaces.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return api.MarshalIndent(v, "", "  ")
	}
	return api.Marshal(v)
}

// WorkbookToJSON serializes a workbook result.
func WorkbookToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return ToJSON(wb, pretty)
}

// SheetToJSON serializes a single sheet result.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	return ToJSON(sheet, pretty)
}

// PrintAreaViewToJSON serializes a print area view.
func PrintAreaViewToJSON(view *models.PrintAreaView, pretty bool) ([]byte, error) {
	return ToJSON(view, pretty)
}

// Write serializes v to w followed by a newline.
func Write(w io.Writer, v any, pretty bool) error {
	data, err := ToJSON(v, pretty)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
