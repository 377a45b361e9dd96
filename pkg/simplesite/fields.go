package simplesite

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldKind is the value type of a content key
type FieldKind string

const (
	FieldText         FieldKind = "text"
	FieldRichText     FieldKind = "richtext"
	FieldImage        FieldKind = "image"
	FieldSectionOrder FieldKind = "section_order"
	FieldTheme        FieldKind = "theme"
)

// Theme values accepted by <key>_theme fields
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const (
	// MaxContentKeyLength bounds the byte length of a content key
	MaxContentKeyLength = 128

	// MaxContentValueLength bounds the byte length of a content value
	MaxContentValueLength = 64 * 1024
)

// Global keys that do not belong to a section
const (
	MetaTitleKey       = "meta_title"
	MetaDescriptionKey = "meta_description"
)

var contentKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var fieldRegistry = buildFieldRegistry()

func buildFieldRegistry() map[string]FieldKind {
	reg := map[string]FieldKind{
		SectionOrderKey:    FieldSectionOrder,
		MetaTitleKey:       FieldText,
		MetaDescriptionKey: FieldText,
	}
	for _, s := range sectionSchemas {
		reg[s.ThemeKey] = FieldTheme
		for _, f := range s.Fields {
			switch f.InputType {
			case InputRichText:
				reg[f.Key] = FieldRichText
			case InputImage:
				reg[f.Key] = FieldImage
			default:
				reg[f.Key] = FieldText
			}
		}
	}
	return reg
}

// KindOf returns the kind of a content key. Unknown keys are plain text;
// the second result reports whether the key is registered.
func KindOf(key string) (FieldKind, bool) {
	if kind, ok := fieldRegistry[key]; ok {
		return kind, true
	}
	if strings.HasSuffix(key, "_theme") {
		return FieldTheme, false
	}
	return FieldText, false
}

// KnownContentKeys returns every registered content key
func KnownContentKeys() []string {
	keys := make([]string, 0, len(fieldRegistry))
	for k := range fieldRegistry {
		keys = append(keys, k)
	}
	return keys
}

// ValidateContentKey checks the key grammar
func ValidateContentKey(key string) error {
	if key == "" {
		return errors.New("key is required")
	}
	if len(key) > MaxContentKeyLength {
		return fmt.Errorf("key exceeds %d bytes", MaxContentKeyLength)
	}
	if !contentKeyPattern.MatchString(key) {
		return errors.New("key must start with a lowercase letter and contain only lowercase letters, digits and underscores")
	}
	return nil
}

// ValidateContentField checks a key and the value written to it
func ValidateContentField(key, value string) error {
	if err := ValidateContentKey(key); err != nil {
		return err
	}
	if !utf8.ValidString(value) {
		return errors.New("value must be valid UTF-8")
	}
	if len(value) > MaxContentValueLength {
		return fmt.Errorf("value exceeds %d bytes", MaxContentValueLength)
	}

	kind, _ := KindOf(key)
	switch kind {
	case FieldImage:
		return ValidateImageURL(value)
	case FieldSectionOrder:
		if _, err := ValidateSectionOrder(value); err != nil {
			return err
		}
	case FieldTheme:
		if value != "" && value != ThemeLight && value != ThemeDark {
			return fmt.Errorf("theme must be %q or %q", ThemeLight, ThemeDark)
		}
	}
	return nil
}

// ValidateContentUpdate checks a full field update, including its optional
// classification columns
func ValidateContentUpdate(key string, update ContentFieldUpdate) error {
	if err := ValidateContentField(key, update.Value); err != nil {
		return err
	}
	if update.SortOrder != nil && *update.SortOrder < 0 {
		return errors.New("sort order must not be negative")
	}
	if update.Metadata != nil && *update.Metadata != "" && !json.Valid([]byte(*update.Metadata)) {
		return errors.New("metadata must be valid JSON")
	}
	if update.MediaID != nil && *update.MediaID <= 0 {
		return errors.New("media id must be positive")
	}
	return nil
}

// ValidateImageURL accepts an empty value, a site-relative path or an
// absolute http(s) URL
func ValidateImageURL(value string) error {
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("image must be a site path or an http(s) URL")
	}
	return nil
}
