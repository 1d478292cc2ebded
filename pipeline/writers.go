package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-scrape-products/models"
)

// ShopifyWriter accumulates import rows and writes the CSV in one shot at
// Close. Deferring the write means an interrupted run leaves no partial
// file and an empty run leaves no file at all.
type ShopifyWriter struct {
	path string

	mu       sync.Mutex
	rows     [][]string
	products int
	written  bool
	closed   bool
}

// NewShopifyWriter prepares a writer targeting path. The file itself is
// not created until Close sees at least one product.
func NewShopifyWriter(path string) (*ShopifyWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	return &ShopifyWriter{path: path}, nil
}

// Write expands products into rows and buffers them.
func (sw *ShopifyWriter) Write(products []*models.Product) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.closed {
		return fmt.Errorf("shopify writer already closed")
	}
	for _, product := range products {
		sw.rows = append(sw.rows, ProductRows(product)...)
		sw.products++
	}
	return nil
}

// Close writes the header and all buffered rows, overwriting any existing
// file. With zero products no file is created. Close is idempotent.
func (sw *ShopifyWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.closed {
		return nil
	}
	sw.closed = true

	if sw.products == 0 {
		return nil
	}

	if err := ensureDir(sw.path); err != nil {
		return err
	}
	f, err := os.Create(sw.path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(Header()); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range sw.rows {
		if err := writer.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv file: %w", err)
	}

	sw.written = true
	return nil
}

// Validate reports the zero-products condition and checks the output file
// made it to disk.
func (sw *ShopifyWriter) Validate() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.products == 0 {
		return fmt.Errorf("no products parsed")
	}
	if !sw.written {
		return fmt.Errorf("output file not written")
	}
	info, err := os.Stat(sw.path)
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes newline-delimited JSON product records.
type JSONWriter struct {
	file     *os.File
	writer   *bufio.Writer
	encoder  *json.Encoder
	mu       sync.Mutex
	products int
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends products in JSONL format.
func (jw *JSONWriter) Write(products []*models.Product) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, product := range products {
		if err := jw.encoder.Encode(product); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		jw.products++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}

	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures at least one product was written.
func (jw *JSONWriter) Validate() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.products == 0 {
		return fmt.Errorf("no products parsed")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
