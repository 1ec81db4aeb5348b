package vecindex

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// indexArtifact is the on-disk form of the flat index: a single opaque
// container, dimensionality fixed at creation.
type indexArtifact struct {
	Dim     int
	Vectors [][]float32
}

// Save persists the snapshot as two artifacts: the index as a gob container
// and the catalog as a JSON list, the latter kept human-diffable. Both are
// written via a temp file and rename so a crash never leaves a torn artifact
// next to a stale counterpart.
func (s *Snapshot) Save(indexPath, catalogPath string) error {
	if err := writeAtomic(indexPath, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(indexArtifact{Dim: s.Index.dim, Vectors: s.Index.vectors})
	}); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}
	if err := writeAtomic(catalogPath, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Catalog)
	}); err != nil {
		return fmt.Errorf("write catalog artifact: %w", err)
	}
	return nil
}

// Load reloads a snapshot, re-validating the correspondence contract: the
// catalog length must equal the index size. A mismatch means the artifacts
// were rebuilt out of lockstep and every resolved chunk would be wrong, so
// it is fatal rather than recoverable.
func Load(indexPath, catalogPath string) (*Snapshot, error) {
	f, err := os.Open(filepath.Clean(indexPath))
	if err != nil {
		return nil, fmt.Errorf("open index artifact: %w", err)
	}
	defer f.Close()

	var art indexArtifact
	if err := gob.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("decode index artifact: %w", err)
	}
	for i, v := range art.Vectors {
		if len(v) != art.Dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, artifact declares %d", ErrDimensionMismatch, i, len(v), art.Dim)
		}
	}

	data, err := os.ReadFile(filepath.Clean(catalogPath))
	if err != nil {
		return nil, fmt.Errorf("read catalog artifact: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog artifact: %w", err)
	}

	if len(catalog) != len(art.Vectors) {
		return nil, fmt.Errorf("%w: catalog has %d entries, index has %d vectors", ErrCorrespondence, len(catalog), len(art.Vectors))
	}

	return &Snapshot{
		Index:   &Index{dim: art.Dim, vectors: art.Vectors},
		Catalog: catalog,
	}, nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
