// Package apiinfo reads the runtime-version descriptors shipped with the Xamarin.Android framework.
package apiinfo

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/droidnet/internal/core/domain"
	"go.trai.ch/droidnet/internal/core/ports"
	"go.trai.ch/zerr"
)

// DescriptorFileName is the descriptor file inside every v* profile directory.
const DescriptorFileName = "AndroidApiInfo.xml"

var _ ports.APIInfoLookup = (*Lookup)(nil)

// Lookup implements ports.APIInfoLookup against the installed MonoAndroid profiles.
type Lookup struct{}

// NewLookup creates a new Lookup.
func NewLookup() *Lookup {
	return &Lookup{}
}

type descriptor struct {
	XMLName xml.Name `xml:"AndroidApiInfo"`
	Level   string   `xml:"Level"`
	Version string   `xml:"Version"`
}

// Find scans the v* subdirectories of searchRoot in name order and returns the first
// descriptor whose level equals level.
func (l *Lookup) Find(searchRoot string, level int) (domain.APIInfo, error) {
	entries, err := os.ReadDir(searchRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.APIInfo{}, zerr.With(zerr.Wrap(domain.ErrDescriptorRootMissing, "cannot resolve runtime version"), "path", searchRoot)
		}
		return domain.APIInfo{}, zerr.With(zerr.Wrap(err, domain.ErrDescriptorRootMissing.Error()), "path", searchRoot)
	}

	var found []int
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "v") {
			continue
		}
		path := filepath.Join(searchRoot, entry.Name(), DescriptorFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		info, err := Parse(path)
		if err != nil {
			return domain.APIInfo{}, err
		}
		if info.Level == level {
			return info, nil
		}
		found = append(found, info.Level)
	}

	slices.Sort(found)
	msg := fmt.Sprintf("no descriptor for api level %d in %s; found levels %v", level, searchRoot, found)
	return domain.APIInfo{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrAPILevelNotFound, msg), "api_level", level), "path", searchRoot)
}

// Parse reads one descriptor. Both Level and Version must be present.
func Parse(path string) (domain.APIInfo, error) {
	// #nosec G304 -- path is built from the configured framework root
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.APIInfo{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrDescriptorMalformed, err), "cannot read api info descriptor"), "path", path)
	}

	var d descriptor
	if err := xml.Unmarshal(data, &d); err != nil {
		return domain.APIInfo{}, zerr.With(zerr.Wrap(errors.Join(domain.ErrDescriptorMalformed, err), "cannot parse api info descriptor"), "path", path)
	}

	levelText := strings.TrimSpace(d.Level)
	if levelText == "" {
		return domain.APIInfo{}, malformed(path, "Level")
	}
	level, err := strconv.Atoi(levelText)
	if err != nil {
		return domain.APIInfo{}, zerr.With(malformed(path, "Level"), "value", levelText)
	}

	version := strings.TrimSpace(d.Version)
	if version == "" {
		return domain.APIInfo{}, malformed(path, "Version")
	}

	return domain.APIInfo{Level: level, Version: version}, nil
}

func malformed(path, field string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrDescriptorMalformed, "failed to parse api "+strings.ToLower(field)), "path", path), "field", field)
}
