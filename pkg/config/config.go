/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"errors"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-cpap/pkg/log"
)

type ExtractConfig struct {
	Destination string `json:"destination,omitempty"`

	// Naming is either "timestamp" (output named by the decoded start time)
	// or "source" (<base>_extracted).
	Naming     string   `json:"naming,omitempty"`
	Format     string   `json:"format,omitempty"`
	SchemaSet  string   `json:"schemaSet,omitempty"`
	SchemaFile string   `json:"schemaFile,omitempty"`
	Delimiter  string   `json:"delimiter,omitempty"`
	DecodeBody bool     `json:"decodeBody,omitempty"`
	Overwrite  bool     `json:"overwrite,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
	Jobs       int      `json:"jobs,omitempty"`
}

type IndexConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type ApiConfig struct {
	Address string `json:"address,omitempty"`
	Port    int    `json:"port,omitempty"`
}

type Config struct {
	LogLevel string         `json:"logLevel,omitempty"`
	Extract  *ExtractConfig `json:"extract,omitempty"`
	Index    *IndexConfig   `json:"index,omitempty"`
	Api      *ApiConfig     `json:"api,omitempty"`
	filepath string
}

func (c *Config) Filepath() string {
	return c.filepath
}

func (c *Config) SetFilepath(path string) {
	c.filepath = path
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file over the current values. A missing file is not
// an error: the defaults stay in place.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("Config file %s not found, using defaults", c.filepath)
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return ErrConfigInvalid{Path: c.filepath, Err: err}
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if c.Extract != nil {
		switch c.Extract.Naming {
		case NamingTimestamp, NamingSource:
		default:
			return ErrConfigInvalid{Path: c.filepath, Err: errors.New("naming must be timestamp or source")}
		}
		switch c.Extract.Format {
		case FormatText, FormatYAML, FormatJSON:
		default:
			return ErrConfigInvalid{Path: c.filepath, Err: errors.New("format must be text, yaml or json")}
		}
		if c.Extract.Jobs < 0 {
			return ErrConfigInvalid{Path: c.filepath, Err: errors.New("jobs must not be negative")}
		}
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return ErrConfigInvalid{Path: c.filepath, Err: err}
		}
	}
	return nil
}

func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}

func ConfigDirPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func DefaultConfigPath() string {
	return filepath.Join(ConfigDirPath(), ConfigFile)
}

func DefaultIndexPath() string {
	return filepath.Join(ConfigDirPath(), IndexFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Extract: &ExtractConfig{
			Destination: DefaultDestination,
			Naming:      NamingTimestamp,
			Format:      FormatText,
			SchemaSet:   DefaultSchemaSet,
			Delimiter:   DefaultDelimiter,
			Extensions:  []string{DefaultExtension},
			Jobs:        1,
		},
		Index: &IndexConfig{
			Enabled: true,
			Path:    DefaultIndexPath(),
		},
		Api: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		filepath: DefaultConfigPath(),
	}
}
