package refdata

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Load reads a reference-data YAML file. An empty path loads the embedded default.
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*RefData, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read refdata: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes, validates and versions reference data
func LoadBytes(data []byte) (*RefData, error) {
	var rd RefData
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&rd); err != nil {
		return nil, fmt.Errorf("decode refdata: %w", err)
	}

	if err := Validate(&rd); err != nil {
		return nil, err
	}

	if rd.Version == "" {
		hash, err := Hash(&rd)
		if err != nil {
			return nil, err
		}
		rd.Version = hash[:12]
	}

	rd.compile()
	return &rd, nil
}

// Default returns the reference data compiled into the binary
func Default() (*RefData, error) {
	return LoadBytes(defaultYAML)
}

// Hash generates SHA256 hash from RefData (canonical JSON)
// 주의: map 대신 slice 사용으로 해시 재현성 보장
func Hash(rd *RefData) (string, error) {
	jsonBytes, err := json.Marshal(struct {
		SectorRules []SectorRule `json:"sector_rules"`
		WellKnown   []string     `json:"well_known"`
		Exclusions  Exclusions   `json:"exclusions"`
	}{rd.SectorRules, rd.WellKnown, rd.Exclusions})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
