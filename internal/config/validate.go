package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateValidation() error {
	switch c.Validation.Mode {
	case "strict", "lenient":
	default:
		return fmt.Errorf("validation.mode must be \"strict\" or \"lenient\", got %q", c.Validation.Mode)
	}
	if c.Validation.FrameTolerance <= 0 || c.Validation.FrameTolerance > 1 {
		return errors.New("validation.frame_tolerance must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.MaxEntries <= 0 {
		return errors.New("extraction.max_entries must be positive")
	}
	if c.Extraction.FirstSeconds <= 0 {
		return errors.New("extraction.first_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	// The API key is checked at insight time, not load time, so validation
	// and extraction work without one.
	return nil
}
