package rating

import (
	"fmt"
	"log"

	"statrater/pkg/config"
	"statrater/pkg/locale"
	"statrater/pkg/ocr"
)

// FromConfig builds a Service with the built-in locales, the YAML profiles
// found in cfg.LocaleDir and a tesseract recognizer.
func FromConfig(cfg config.Config) (*Service, error) {
	reg := locale.NewRegistry(cfg.DefaultLocale)
	if cfg.LocaleDir != "" {
		profiles, err := locale.LoadDir(cfg.LocaleDir)
		if err != nil {
			return nil, err
		}
		for _, p := range profiles {
			if err := reg.Register(p); err != nil {
				return nil, err
			}
			log.Printf("loaded locale %s (%s)", p.ID, p.Name)
		}
	}
	if _, err := reg.Lookup(""); err != nil {
		return nil, fmt.Errorf("default locale: %w", err)
	}
	return New(reg, &ocr.Tesseract{TessdataPrefix: cfg.TessdataPrefix}), nil
}
