package nn

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"textcnn/internal/floats32"
)

const (
	manifestFile      = "manifest.json"
	weightsFile       = "weights.f32"
	checkpointVersion = 1
)

type paramInfo struct {
	Name      string `json:"name"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Trainable bool   `json:"trainable"`
}

type manifest struct {
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	Config    Config      `json:"config"`
	VocabRows int         `json:"vocab_rows"`
	Dim       int         `json:"dim"`
	Labels    []string    `json:"labels"`
	Params    []paramInfo `json:"params"`
}

// SaveCheckpoint writes the model into dir: a JSON manifest describing
// the topology plus a little-endian float32 dump of every param in
// manifest order. The frozen embedding is included, so evaluating a
// checkpoint needs no embedding file.
func SaveCheckpoint(dir string, net *Network, labels []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("nn: create checkpoint dir: %w", err)
	}
	params := net.Params()
	man := manifest{
		Version:   checkpointVersion,
		CreatedAt: time.Now().UTC(),
		Config:    net.cfg,
		VocabRows: net.embed.W.Value.Rows,
		Dim:       net.embed.W.Value.Cols,
		Labels:    labels,
	}
	for _, p := range params {
		man.Params = append(man.Params, paramInfo{
			Name:      p.Name,
			Rows:      p.Value.Rows,
			Cols:      p.Value.Cols,
			Trainable: p.Trainable,
		})
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("nn: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("nn: write manifest: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, weightsFile))
	if err != nil {
		return fmt.Errorf("nn: create weights file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, p := range params {
		if err := binary.Write(bw, binary.LittleEndian, p.Value.Data); err != nil {
			f.Close()
			return fmt.Errorf("nn: write %s: %w", p.Name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("nn: flush weights: %w", err)
	}
	return f.Close()
}

// LoadCheckpoint rebuilds a network and its label set from dir.
func LoadCheckpoint(dir string) (*Network, []string, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, nil, fmt.Errorf("nn: read manifest: %w", err)
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, nil, fmt.Errorf("nn: parse manifest: %w", err)
	}
	if man.Version != checkpointVersion {
		return nil, nil, fmt.Errorf("nn: unsupported checkpoint version %d", man.Version)
	}

	net, err := New(man.Config, floats32.NewMatrix(man.VocabRows, man.Dim))
	if err != nil {
		return nil, nil, fmt.Errorf("nn: rebuild network: %w", err)
	}
	params := net.Params()
	if len(params) != len(man.Params) {
		return nil, nil, fmt.Errorf("nn: manifest lists %d params, network has %d", len(man.Params), len(params))
	}
	var want int64
	for i, p := range params {
		pi := man.Params[i]
		if pi.Name != p.Name || pi.Rows != p.Value.Rows || pi.Cols != p.Value.Cols {
			return nil, nil, fmt.Errorf("nn: param %d is %s (%d, %d) in manifest, %s (%d, %d) in network",
				i, pi.Name, pi.Rows, pi.Cols, p.Name, p.Value.Rows, p.Value.Cols)
		}
		want += int64(len(p.Value.Data)) * 4
	}

	path := filepath.Join(dir, weightsFile)
	st, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("nn: stat weights: %w", err)
	}
	if st.Size() != want {
		return nil, nil, fmt.Errorf("nn: weights file is %d bytes, manifest needs %d", st.Size(), want)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("nn: open weights: %w", err)
	}
	defer f.Close()
	br := bufio.NewReader(f)
	for _, p := range params {
		if err := binary.Read(br, binary.LittleEndian, p.Value.Data); err != nil {
			return nil, nil, fmt.Errorf("nn: read %s: %w", p.Name, err)
		}
	}
	return net, man.Labels, nil
}
