package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-scrape-listings/models"
)

// ErrNoRecords is returned by Validate when a writer received no records.
var ErrNoRecords = errors.New("pipeline: no records written")

// CSVHeader is the flat column layout of CSV output.
var CSVHeader = []string{
	"name",
	"price.min",
	"price.max",
	"priceText",
	"previousPrice.min",
	"previousPrice.max",
	"previousPriceText",
	"discountPercent",
	"shippingLabel",
	"rating.count",
	"rating.scale",
	"ratingText",
	"score",
	"imageUrl",
	"pageUrl",
}

// CSVWriter writes records to CSV. The header is written with the first
// record, so a writer that receives none leaves an empty file.
type CSVWriter struct {
	file    *os.File
	writer  *csv.Writer
	mu      sync.Mutex
	written int
}

// NewCSVWriter creates filename and its parent directories.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	return &CSVWriter{
		file:   f,
		writer: csv.NewWriter(f),
	}, nil
}

// Write appends records to the CSV output.
func (cw *CSVWriter) Write(records []*models.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if len(records) == 0 {
		return nil
	}
	if cw.written == 0 {
		if err := cw.writer.Write(CSVHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for _, record := range records {
		if err := cw.writer.Write(csvRow(record)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		cw.written++
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate reports ErrNoRecords when nothing was written.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.written == 0 {
		return fmt.Errorf("csv: %w", ErrNoRecords)
	}
	return nil
}

func csvRow(r *models.Record) []string {
	return []string{
		r.Name,
		formatInt(r.Price.Min),
		formatInt(r.Price.Max),
		r.PriceText,
		formatInt(r.PreviousPrice.Min),
		formatInt(r.PreviousPrice.Max),
		r.PreviousPriceText,
		strconv.Itoa(r.DiscountPercent),
		r.ShippingLabel,
		formatInt(r.Rating.Count),
		strconv.Itoa(r.Rating.Scale),
		r.RatingText,
		strconv.FormatFloat(r.Score, 'f', -1, 64),
		r.ImageURL,
		r.PageURL,
	}
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// JSONWriter streams records into a single JSON array. The closing bracket is
// written by Close; a writer that receives no records produces "[]".
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	mu      sync.Mutex
	written int
}

// NewJSONWriter creates filename and its parent directories.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Write appends records to the array.
func (jw *JSONWriter) Write(records []*models.Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, record := range records {
		data, err := json.MarshalIndent(record, "  ", "  ")
		if err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		sep := ",\n  "
		if jw.written == 0 {
			sep = "[\n  "
		}
		if _, err := jw.writer.WriteString(sep); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		if _, err := jw.writer.Write(data); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		jw.written++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close terminates the array, flushes buffers and closes the file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	closing := "\n]\n"
	if jw.written == 0 {
		closing = "[]\n"
	}
	if _, err := jw.writer.WriteString(closing); err != nil {
		return fmt.Errorf("terminate json array: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate reports ErrNoRecords when nothing was written.
func (jw *JSONWriter) Validate() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.written == 0 {
		return fmt.Errorf("json: %w", ErrNoRecords)
	}
	return nil
}

// SaveRecords writes records as a JSON array to jsonPath and as CSV to
// csvPath. Either path may be empty to skip that format.
func SaveRecords(records []models.Record, jsonPath, csvPath string) error {
	ptrs := make([]*models.Record, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}

	var writers []OutputWriter
	if jsonPath != "" {
		w, err := NewJSONWriter(jsonPath)
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}
	if csvPath != "" {
		w, err := NewCSVWriter(csvPath)
		if err != nil {
			closeAll(writers)
			return err
		}
		writers = append(writers, w)
	}

	for _, w := range writers {
		if err := w.Write(ptrs); err != nil {
			closeAll(writers)
			return err
		}
	}
	return closeAll(writers)
}

// ReadRecords loads a JSON array of records written by JSONWriter.
func ReadRecords(filename string) ([]models.Record, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", filename, err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// SavePages writes crawled page content as an indented JSON array.
func SavePages(pages []models.PageContent, filename string) error {
	if err := ensureDir(filename); err != nil {
		return err
	}
	if pages == nil {
		pages = []models.PageContent{}
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write pages: %w", err)
	}
	return nil
}

func closeAll(writers []OutputWriter) error {
	var errs []error
	for _, w := range writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
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
