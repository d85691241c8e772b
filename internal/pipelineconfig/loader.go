package pipelineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML parameter file and returns Params with the raw bytes.
// Missing keys keep their Default() values.
// KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Params, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read analysis config: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return p, data, nil
}

// Parse decodes and validates YAML parameter bytes
func Parse(data []byte) (*Params, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode analysis config: %w", err)
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Hash generates SHA256 hash from Params (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(p Params) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
