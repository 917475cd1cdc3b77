package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"armory/internal/fault"
)

// Load reads the main config file and the five manifests it points at,
// returning the fully parsed Config. The main file is YAML and only carries
// paths:
//
//	config:
//	  packages_file: manifests/packages.txt
//	  special_file: manifests/special.txt
//	  gotools_file: manifests/gotools.txt
//	  tools_file: manifests/tools.txt
//	  wordlists_file: manifests/wordlists.txt
//
// Any missing or unreadable file, main or manifest, is a configuration fault
// that aborts the run.
func Load(configFile string) (*Config, error) {
	mainConfig := struct {
		Config struct {
			PackagesFile  string `yaml:"packages_file"`
			SpecialFile   string `yaml:"special_file"`
			GoToolsFile   string `yaml:"gotools_file"`
			ToolsFile     string `yaml:"tools_file"`
			WordlistsFile string `yaml:"wordlists_file"`
		} `yaml:"config"`
	}{}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fault.Configf("read config %s: %w", configFile, err)
	}
	if err := yaml.Unmarshal(raw, &mainConfig); err != nil {
		return nil, fault.Configf("parse config %s: %w", configFile, err)
	}

	cfg := &Config{}
	if cfg.Packages, err = LoadPackages(mainConfig.Config.PackagesFile); err != nil {
		return nil, err
	}
	if cfg.Special, err = LoadSpecial(mainConfig.Config.SpecialFile); err != nil {
		return nil, err
	}
	if cfg.GoTools, err = LoadGoTools(mainConfig.Config.GoToolsFile); err != nil {
		return nil, err
	}
	if cfg.Tools, err = LoadRepos(mainConfig.Config.ToolsFile); err != nil {
		return nil, err
	}
	if cfg.Wordlists, err = LoadRepos(mainConfig.Config.WordlistsFile); err != nil {
		return nil, err
	}
	return cfg, nil
}
