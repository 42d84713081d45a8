// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for InternScout.
// SearchQuery and SearchRequest describe what is sent to the scraping
// backend; CompanyResult is one record streamed back from it.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// DefaultDomains is sent when the user leaves the industry field blank.
var DefaultDomains = []string{"software", "web development"}

// DefaultIntents is the fixed intent list sent with every search.
var DefaultIntents = []string{"company", "agency"}

// SearchQuery is a validated search: a trimmed city and the industry list
// derived from the comma-separated industry field.
type SearchQuery struct {
	// City is the trimmed, non-empty city name.
	City string `json:"city" yaml:"city"`

	// Industry is the trimmed industry field as the user typed it. It is kept
	// for notifications; the backend receives Industries.
	Industry string `json:"industry,omitempty" yaml:"industry,omitempty"`

	// Industries holds the comma-separated parts of Industry, each trimmed.
	Industries []string `json:"industries,omitempty" yaml:"industries,omitempty"`
}

// Domains returns the domain list for the backend request: Industries when
// present, otherwise fallback.
func (q SearchQuery) Domains(fallback []string) []string {
	if len(q.Industries) > 0 {
		return q.Industries
	}
	if len(fallback) > 0 {
		return fallback
	}
	return DefaultDomains
}

// SearchRequest is the JSON body POSTed to the scraping backend.
type SearchRequest struct {
	City    string   `json:"city"`
	Domains []string `json:"domains"`
	Intents []string `json:"intents"`
}

// CompanyResult is one company record decoded from a line of the backend's
// NDJSON stream. The backend schema is not fixed, so every display field is
// optional and Raw keeps the line exactly as received.
type CompanyResult struct {
	Name          string `json:"Company Name,omitempty" yaml:"name,omitempty"`
	Type          string `json:"Type,omitempty" yaml:"type,omitempty"`
	Link          string `json:"Link,omitempty" yaml:"link,omitempty"`
	SourceKeyword string `json:"Source Keyword,omitempty" yaml:"source_keyword,omitempty"`

	// Raw is the undecoded JSON value.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// Field aliases accepted for each display field, in priority order. The
// first set of keys is what the scraping backend emits today.
var (
	nameKeys    = []string{"Company Name", "name", "company", "title"}
	typeKeys    = []string{"Type", "type", "category"}
	linkKeys    = []string{"Link", "link", "url", "URL"}
	keywordKeys = []string{"Source Keyword", "source_keyword"}
)

// DecodeCompanyResult parses one NDJSON line. Any valid JSON value is
// accepted; display fields are filled from the known keys when the value is
// an object. Invalid JSON returns an error.
func DecodeCompanyResult(line []byte) (CompanyResult, error) {
	line = bytes.TrimSpace(line)
	if !json.Valid(line) {
		return CompanyResult{}, fmt.Errorf("invalid JSON record")
	}

	r := CompanyResult{Raw: append(json.RawMessage(nil), line...)}

	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		// Valid JSON that is not an object: keep the raw value only.
		return r, nil
	}
	r.Name = firstString(fields, nameKeys)
	r.Type = firstString(fields, typeKeys)
	r.Link = firstString(fields, linkKeys)
	r.SourceKeyword = firstString(fields, keywordKeys)
	return r, nil
}

func firstString(fields map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// MarshalJSON writes Raw verbatim when present so records pass through
// unchanged; records built in code are encoded from their fields.
func (r CompanyResult) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain CompanyResult
	return json.Marshal(plain(r))
}

// DisplayName returns the company name or a placeholder.
func (r CompanyResult) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return "Unnamed company"
}

// Category returns the record's type tag, defaulting to "Homepage".
func (r CompanyResult) Category() string {
	if r.Type != "" {
		return r.Type
	}
	return "Homepage"
}

// SafeLink returns Link only when it is an absolute http or https URL.
func (r CompanyResult) SafeLink() string {
	u, err := url.Parse(r.Link)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
