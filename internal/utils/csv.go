// Package utils holds candle file helpers shared by the command line tools.
package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"patternScout/internal/domain"
	"patternScout/internal/ports"
)

var candleHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// WriteCandles writes candles as CSV with a header row.
func WriteCandles(w io.Writer, candles []domain.Candle) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(candleHeader); err != nil {
		return err
	}
	for _, c := range candles {
		if err := writer.Write([]string{
			c.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCandlesToCSV creates filename and writes candles into it.
func WriteCandlesToCSV(candles []domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCandles(file, candles)
}

// ReadCandles parses CSV candles. Columns are located by header name, so extra
// columns are ignored; the time column may be named timestamp or open_time and
// hold RFC3339 or unix milliseconds.
func ReadCandles(r io.Reader) ([]domain.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty candle file", ports.ErrInvalidRequest)
		}
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["timestamp"]; !ok {
		if i, ok := col["open_time"]; ok {
			col["timestamp"] = i
		}
	}
	for _, name := range candleHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ports.ErrInvalidRequest, name)
		}
	}

	var candles []domain.Candle
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(rec[col["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ports.ErrInvalidRequest, line, err)
		}
		c := domain.Candle{Timestamp: ts}
		for _, f := range []struct {
			name string
			dst  *float64
		}{{"open", &c.Open}, {"high", &c.High}, {"low", &c.Low}, {"close", &c.Close}, {"volume", &c.Volume}} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col[f.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", ports.ErrInvalidRequest, line, f.name, err)
			}
			*f.dst = v
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// ReadCandlesFromCSV opens filename and parses its candles.
func ReadCandlesFromCSV(filename string) ([]domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCandles(file)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}
