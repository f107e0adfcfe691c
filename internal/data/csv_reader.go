package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"imbalancecv/internal/preprocessing"
)

type Dataset struct {
	X             [][]decimal.Decimal
	Y             []int
	Features      []string
	Classes       []string
	PositiveClass int
	SourceFile    string
}

type DataBatch struct {
	X      [][]decimal.Decimal
	Labels []string
	Size   int
}

type StreamingReader struct {
	file      *os.File
	reader    *csv.Reader
	headers   []string
	labelCol  int
	batchSize int
	line      int
	Skipped   int
}

// NewStreamingReader opens a CSV file with a header row. labelColumn names the
// label column; an empty name selects the last column.
func NewStreamingReader(filename string, labelColumn string, batchSize int) (*StreamingReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	labelCol := len(headers) - 1
	if labelColumn != "" {
		labelCol = slices.Index(headers, labelColumn)
		if labelCol < 0 {
			file.Close()
			return nil, fmt.Errorf("label column %q not found in %v", labelColumn, headers)
		}
	}

	if batchSize <= 0 {
		batchSize = 1000
	}

	return &StreamingReader{
		file:      file,
		reader:    reader,
		headers:   headers,
		labelCol:  labelCol,
		batchSize: batchSize,
		line:      1,
	}, nil
}

// ReadBatch returns up to batchSize complete rows, skipping rows with empty
// cells. It returns io.EOF once the file is exhausted.
func (sr *StreamingReader) ReadBatch() (*DataBatch, error) {
	batch := &DataBatch{
		X:      make([][]decimal.Decimal, 0, sr.batchSize),
		Labels: make([]string, 0, sr.batchSize),
	}

	for len(batch.X) < sr.batchSize {
		record, err := sr.reader.Read()
		if err == io.EOF {
			if len(batch.X) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}
		sr.line++

		if slices.ContainsFunc(record, func(val string) bool { return strings.TrimSpace(val) == "" }) {
			sr.Skipped++
			continue
		}

		features := make([]decimal.Decimal, 0, len(record)-1)
		label := ""

		for j, val := range record {
			if j == sr.labelCol {
				label = strings.TrimSpace(val)
				continue
			}
			decVal, err := decimal.NewFromString(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: invalid number %q", sr.line, sr.headers[j], val)
			}
			features = append(features, decVal)
		}

		batch.X = append(batch.X, features)
		batch.Labels = append(batch.Labels, label)
	}

	batch.Size = len(batch.X)
	return batch, nil
}

// FeatureNames returns the header without the label column.
func (sr *StreamingReader) FeatureNames() []string {
	names := make([]string, 0, len(sr.headers)-1)
	for j, h := range sr.headers {
		if j != sr.labelCol {
			names = append(names, h)
		}
	}
	return names
}

func (sr *StreamingReader) Close() error {
	return sr.file.Close()
}

type CSVReader struct {
	filename    string
	labelColumn string
	batchSize   int
}

func NewCSVReader(filename, labelColumn string) *CSVReader {
	return &CSVReader{filename: filename, labelColumn: labelColumn, batchSize: 1000}
}

// LoadData reads the whole file and encodes labels. positiveLabel must be one
// of the label values; its encoding becomes Dataset.PositiveClass.
func (cr *CSVReader) LoadData(positiveLabel string) (*Dataset, error) {
	reader, err := NewStreamingReader(cr.filename, cr.labelColumn, cr.batchSize)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var X [][]decimal.Decimal
	var labels []string
	for batchNum := 0; ; batchNum++ {
		batch, err := reader.ReadBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading batch %d: %w", batchNum, err)
		}
		X = append(X, batch.X...)
		labels = append(labels, batch.Labels...)
	}

	if len(X) == 0 {
		return nil, fmt.Errorf("insufficient data in file %s", cr.filename)
	}

	encoder := preprocessing.NewLabelEncoder()
	y, err := encoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}

	positive, ok := encoder.ClassToInt[positiveLabel]
	if !ok {
		return nil, fmt.Errorf("positive label %q not present (labels: %v)", positiveLabel, encoder.Classes())
	}

	return &Dataset{
		X:             X,
		Y:             y,
		Features:      reader.FeatureNames(),
		Classes:       encoder.Classes(),
		PositiveClass: positive,
		SourceFile:    cr.filename,
	}, nil
}
