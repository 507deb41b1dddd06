// Package generations reads the files an EDNEL run writes about its dependency
// networks: the per-generation CPT dump (plain JSON or a zip holding one JSON)
// and the optional deterministic dependency graph.
package generations

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ednelkit/domain/cpt"
	"ednelkit/domain/network"
	apperrors "ednelkit/internal/errors"

	"github.com/tidwall/gjson"
)

// ReadFile loads a generations file. A .zip path must contain exactly one .json entry.
func ReadFile(path string) ([]network.RawGeneration, error) {
	data, err := readJSONBytes(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes {generation: {variable: {row: probability}}}, keeping file order
// at every level.
func Parse(data []byte) ([]network.RawGeneration, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("generations file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("generations file must hold an object keyed by generation")
	}

	var (
		gens []network.RawGeneration
		perr error
	)
	root.ForEach(func(genKey, genValue gjson.Result) bool {
		if !genValue.IsObject() {
			perr = fmt.Errorf("generation %s: expected an object of variables", genKey.String())
			return false
		}
		gen := network.RawGeneration{ID: genKey.String()}
		genValue.ForEach(func(varKey, varValue gjson.Result) bool {
			v, err := parseVariable(varKey.String(), varValue)
			if err != nil {
				perr = fmt.Errorf("generation %s: %w", gen.ID, err)
				return false
			}
			gen.Variables = append(gen.Variables, v)
			return true
		})
		if perr != nil {
			return false
		}
		gens = append(gens, gen)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return gens, nil
}

func parseVariable(name string, value gjson.Result) (network.RawVariable, error) {
	if !value.IsObject() {
		return network.RawVariable{}, fmt.Errorf("variable %s: expected an object of rows", name)
	}
	v := network.RawVariable{Name: name}
	var err error
	value.ForEach(func(line, prob gjson.Result) bool {
		if prob.Type != gjson.Number {
			err = fmt.Errorf("variable %s: row %q has non-numeric probability %s", name, line.String(), prob.Raw)
			return false
		}
		v.Rows = append(v.Rows, cpt.RowProbability{Row: line.String(), Probability: prob.Float()})
		return true
	})
	return v, err
}

// ReadDeterministic loads {variable: {parent: ...}}. An empty path yields nil.
func ReadDeterministic(path string) (*network.Deterministic, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deterministic graph: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("deterministic graph %s is not valid JSON", path)
	}

	det := &network.Deterministic{Parents: make(map[string][]string)}
	gjson.ParseBytes(data).ForEach(func(variable, parents gjson.Result) bool {
		name := variable.String()
		det.Variables = append(det.Variables, name)
		parents.ForEach(func(parent, _ gjson.Result) bool {
			det.Parents[name] = append(det.Parents[name], parent.String())
			return true
		})
		return true
	})
	return det, nil
}

func readJSONBytes(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to read generations file %s", path)
		}
		return data, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", path, err)
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		if entry != nil {
			return nil, fmt.Errorf("zip %s holds more than one JSON file", path)
		}
		entry = f
	}
	if entry == nil {
		return nil, apperrors.NotFound(fmt.Sprintf("JSON entry in %s", path))
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", entry.Name, path, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", entry.Name, path, err)
	}
	return buf.Bytes(), nil
}
