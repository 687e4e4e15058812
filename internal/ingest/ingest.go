// Package ingest decodes person-history files into hydrated histories.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/cohort/schema"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Format is a supported person-history file format.
type Format string

// Supported file formats.
const (
	JSONFormat Format = "json" // an array, a single object, or concatenated objects (JSON Lines)
	YAMLFormat Format = "yaml" // a sequence of people
)

// ErrNoInput is returned when no input files are given.
var ErrNoInput = errors.New("no input files given")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return JSONFormat, nil
	case ".yaml", ".yml":
		return YAMLFormat, nil
	default:
		return "", fmt.Errorf("unsupported input file %s: expected .json, .jsonl, .yaml or .yml", path)
	}
}

// Decode reads every person in the given format and validates them.
func Decode(r io.Reader, format Format) ([]schema.PersonHistory, error) {
	var wires []PersonWire
	var err error
	switch format {
	case JSONFormat:
		wires, err = decodeJSON(r)
	case YAMLFormat:
		wires, err = decodeYAML(r)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	people := make([]schema.PersonHistory, 0, len(wires))
	for _, w := range wires {
		h, err := w.ToHistory()
		if err != nil {
			return nil, err
		}
		people = append(people, h)
	}
	return people, nil
}

func decodeJSON(r io.Reader) ([]PersonWire, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if data[0] == '[' {
		var wires []PersonWire
		if err := dec.Decode(&wires); err != nil {
			return nil, fmt.Errorf("failed to decode JSON array: %w", err)
		}
		return wires, nil
	}

	var wires []PersonWire
	for {
		var w PersonWire
		if err := dec.Decode(&w); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode JSON object %d: %w", len(wires), err)
		}
		wires = append(wires, w)
	}
	return wires, nil
}

func decodeYAML(r io.Reader) ([]PersonWire, error) {
	var wires []PersonWire
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&wires); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return wires, nil
}

// LoadFile reads and validates one person-history file.
func LoadFile(path string) ([]schema.PersonHistory, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	people, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return people, nil
}

// LoadFiles reads every file concurrently and returns the people in file order.
// The first failure cancels the remaining loads.
func LoadFiles(ctx context.Context, paths ...string) ([]schema.PersonHistory, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}
	results := make([][]schema.PersonHistory, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			people, err := LoadFile(path)
			if err != nil {
				return err
			}
			results[i] = people
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []schema.PersonHistory
	for _, people := range results {
		all = append(all, people...)
	}
	return all, nil
}

// ParseEvent decodes and validates a single JSON release event.
func ParseEvent(data []byte) (int, schema.ReleaseEvent, error) {
	var w EventWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return 0, nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return w.ToEvent()
}
