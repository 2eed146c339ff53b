package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-products/models"
)

func sampleProducts() []*models.Product {
	return []*models.Product{
		{Name: "小米手机", Price: 1299, Sales: "1万+人付款", Shop: "小米官方旗舰店", URL: "https://item.taobao.com/1.html", Platform: "淘宝"},
		{Name: "华为手机", Price: 5999.5, Sales: "0", Shop: "华为京东自营旗舰店", URL: "https://item.jd.com/2.html", Platform: "京东"},
		{Name: "", Price: 59.9, Sales: "0", Shop: "", URL: "", Platform: "淘宝"},
	}
}

func TestCSVWriterHeaderAndOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(sampleProducts()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("rows = %d, want header + 3 records", len(records))
	}
	for i, column := range Header {
		if records[0][i] != column {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], column)
		}
	}
	if records[1][0] != "小米手机" || records[2][0] != "华为手机" || records[3][0] != "" {
		t.Fatalf("rows out of aggregation order: %v", records[1:])
	}
	if records[1][1] != "1299" || records[2][1] != "5999.5" || records[3][1] != "59.9" {
		t.Fatalf("unexpected price formatting: %v %v %v", records[1][1], records[2][1], records[3][1])
	}
}

func TestJSONWriterPreservesNonASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write(sampleProducts()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(raw), "淘宝") {
		t.Fatalf("non-ASCII text should be written verbatim, got %q", raw)
	}
	if strings.Contains(string(raw), `\u`) {
		t.Fatalf("output contains escaped runes: %q", raw)
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	count := 0
	for scanner.Scan() {
		var decoded models.Product
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if count != 3 {
		t.Fatalf("json lines = %d, want 3", count)
	}
}

func exportTo(t *testing.T, path string, newWriter func(string) (OutputWriter, error), products []*models.Product) []byte {
	t.Helper()
	writer, err := newWriter(path)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if err := Export(products, writer); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return raw
}

func TestExportIdempotence(t *testing.T) {
	dir := t.TempDir()
	products := sampleProducts()

	newCSV := func(path string) (OutputWriter, error) { return NewCSVWriter(path) }
	newJSON := func(path string) (OutputWriter, error) { return NewJSONWriter(path) }

	csvFirst := exportTo(t, filepath.Join(dir, "a.csv"), newCSV, products)
	csvSecond := exportTo(t, filepath.Join(dir, "b.csv"), newCSV, products)
	if !bytes.Equal(csvFirst, csvSecond) {
		t.Fatalf("csv export is not byte-identical across runs")
	}

	jsonFirst := exportTo(t, filepath.Join(dir, "a.jsonl"), newJSON, products)
	jsonSecond := exportTo(t, filepath.Join(dir, "b.jsonl"), newJSON, products)
	if !bytes.Equal(jsonFirst, jsonSecond) {
		t.Fatalf("json export is not byte-identical across runs")
	}
}

func TestDualWriter(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	jsonPath := filepath.Join(dir, "products.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write(sampleProducts()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(products []*models.Product) error { return errors.New("disk full") }
func (failingWriter) Close() error                           { return nil }
func (failingWriter) Validate() error                        { return nil }

func TestExportWrapsSinkFailure(t *testing.T) {
	err := Export(sampleProducts(), failingWriter{})
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected *ExportError, got %v", err)
	}
}

func TestCSVWriterValidateEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	defer writer.Close()

	// The header alone counts as content; Validate only rejects a
	// zero-byte file.
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
