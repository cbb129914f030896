package config

import (
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"

	"github.com/ru551n/tsfpga/log"
	"github.com/ru551n/tsfpga/util"
)

// Config holds the user-level tool configuration.
type Config struct {
	// ModulesDirs are the folders that are scanned for HDL modules.
	ModulesDirs []string `yaml:"modules_dirs"`
	// VivadoPath is the path to the vivado executable. Empty means lookup via PATH.
	VivadoPath string `yaml:"vivado_path"`
	// GhdlPath is the path to the ghdl executable. Empty means lookup via PATH.
	GhdlPath string `yaml:"ghdl_path"`
	// YosysPath is the path to the yosys executable. Empty means lookup via PATH.
	YosysPath string `yaml:"yosys_path"`
}

const configFileName = "config.yaml"

var config *Config

func getConfigDir() (string, error) {
	if configDir, ok := os.LookupEnv("TSFPGA_CONFIG_DIR"); ok {
		return configDir, nil
	}

	if xdgConfigHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return path.Join(xdgConfigHome, "tsfpga"), nil
	}

	homeDir, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return path.Join(homeDir, ".config", "tsfpga"), nil
}

func loadConfiguration() Config {
	var config Config

	configDir, err := getConfigDir()
	if err != nil {
		log.Debug("Unable to find the config directory. Using default configuration.\n")
		return config
	}

	configFilePath := path.Join(configDir, configFileName)
	data, err := util.ReadFile(configFilePath)
	if err != nil {
		log.Debug("No configuration file at '%s'. Using default configuration.\n", configFilePath)
		return config
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Warning("Error reading configuration file '%s': %s. Using default configuration.\n", configFilePath, err)
		return Config{}
	}

	log.Debug("Loaded configuration from '%s'.\n", configFilePath)
	return config
}

// GetConfig returns the tool configuration. The configuration file is read once.
func GetConfig() Config {
	if config == nil {
		loadedConfig := loadConfiguration()
		config = &loadedConfig
	}

	return *config
}
