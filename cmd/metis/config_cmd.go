package main

import (
	"gopkg.in/yaml.v3"
)

// Run executes the config command. API keys are masked.
func (c *ShowConfigCmd) Run(deps *Dependencies) error {
	cfg := *deps.Config
	cfg.FirecrawlAPIKey = mask(cfg.FirecrawlAPIKey)
	cfg.GeminiAPIKey = mask(cfg.GeminiAPIKey)

	enc := yaml.NewEncoder(deps.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return printError(deps, err)
	}
	return enc.Close()
}

func mask(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "****"
	}
}
