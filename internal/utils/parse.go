package utils

import (
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes a TOML file into v and returns the keys that matched no field.
func LoadTOMLFile(path string, v any) ([]string, error) {
	md, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v", path, err)
		return nil, err
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}
