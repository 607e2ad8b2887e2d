package nosqldb

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/renameio"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// ServiceType identifies the deployment flavor a Config targets (spec §6.2).
type ServiceType = protocol.ServiceType

// Service type constants, re-exported for caller convenience.
const (
	ServiceTypeUnspecified = protocol.ServiceTypeUnspecified
	ServiceTypeCloudSim    = protocol.ServiceTypeCloudSim
	ServiceTypeCloud       = protocol.ServiceTypeCloud
	ServiceTypeOnPrem      = protocol.ServiceTypeOnPrem
)

// Region maps a region id and realm's second-level domain to its service
// endpoint (spec §6.2: "Region objects map a region id ... and realm to the
// endpoint https://nosql.{regionId}.oci.{secondLevelDomain}").
type Region struct {
	ID                string
	Realm             string
	SecondLevelDomain string
}

// Endpoint returns the region's constructed service endpoint.
func (r Region) Endpoint() string {
	return fmt.Sprintf("https://nosql.%s.oci.%s", r.ID, r.SecondLevelDomain)
}

// knownRegions is a representative subset of the full region catalog,
// intentionally not the full ~70-entry enumeration the non-goals exclude
// (spec.md §1 non-goals: "the catalog of geographic regions"). Callers
// needing an unlisted region use LoadRegionOverrides or construct a Region
// value directly.
var knownRegions = map[string]Region{
	"us-phoenix-1":    {ID: "us-phoenix-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"us-ashburn-1":    {ID: "us-ashburn-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"uk-london-1":     {ID: "uk-london-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"ap-tokyo-1":      {ID: "ap-tokyo-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"eu-frankfurt-1":  {ID: "eu-frankfurt-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"ap-mumbai-1":     {ID: "ap-mumbai-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"sa-saopaulo-1":   {ID: "sa-saopaulo-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
	"ca-toronto-1":    {ID: "ca-toronto-1", Realm: "oc1", SecondLevelDomain: "oraclecloud.com"},
}

// LookupRegion resolves a region id (case-insensitive, `_` and `-`
// interchangeable per spec §6.2's "Region id ↔ constant name: lowercase with
// `_` replaced by `-`") against the built-in catalog and any loaded
// overrides.
func LookupRegion(id string, overrides map[string]Region) (Region, bool) {
	key := strings.ToLower(strings.ReplaceAll(id, "_", "-"))
	if r, ok := overrides[key]; ok {
		return r, true
	}
	r, ok := knownRegions[key]
	return r, ok
}

// regionOverrideFile is the persisted form of a caller-supplied region
// override list, grounded on the teacher's YamlNodeStore
// (`client.YamlNodeStore` persists a small list of named network addresses
// to a YAML file with atomic rename-on-write; we repurpose the identical
// shape for a small list of named region endpoints).
type regionOverrideFile struct {
	Regions []Region `yaml:"regions"`
}

// LoadRegionOverrides reads a YAML file of additional region definitions,
// e.g. for on-premise deployments or newly-added regions not yet in the
// built-in catalog.
func LoadRegionOverrides(path string) (map[string]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load region overrides: %w", err)
	}
	var file regionOverrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("load region overrides: parse %s: %w", path, err)
	}
	overrides := make(map[string]Region, len(file.Regions))
	for _, r := range file.Regions {
		overrides[strings.ToLower(r.ID)] = r
	}
	return overrides, nil
}

// SaveRegionOverrides persists a region override list to path, atomically
// (rename-on-write via github.com/google/renameio), mirroring the teacher's
// YamlNodeStore.Save.
func SaveRegionOverrides(path string, regions map[string]Region) error {
	file := regionOverrideFile{Regions: make([]Region, 0, len(regions))}
	for _, r := range regions {
		file.Regions = append(file.Regions, r)
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("save region overrides: marshal: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save region overrides: write %s: %w", path, err)
	}
	return nil
}

// ParseEndpoint validates and normalizes a caller-supplied endpoint string
// per spec §6.2's rules: a bare host assumes https on 443; a bare port
// assumes http unless the port is 443; a bare scheme assumes port 443 for
// https or 8080 for http; a path component is rejected.
func ParseEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", protocol.NewError(protocol.KindArgument, "endpoint must not be empty")
	}

	scheme, rest := "", raw
	if idx := strings.Index(raw, "://"); idx >= 0 {
		scheme = raw[:idx]
		rest = raw[idx+3:]
	}

	if idx := strings.Index(rest, "/"); idx >= 0 {
		return "", protocol.NewError(protocol.KindArgument, "endpoint must not contain a path: %q", raw)
	}

	host, port := rest, ""
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		host, port = rest[:idx], rest[idx+1:]
	}

	switch {
	case scheme == "" && host == "" && port != "":
		// only a port given
		if port == "443" {
			scheme = "https"
		} else {
			scheme = "http"
		}
		host = "localhost"
	case scheme == "" && host != "":
		// only a host given
		scheme = "https"
		if port == "" {
			port = "443"
		}
	case scheme != "" && host == "" && port == "":
		// only a scheme given
		host = "localhost"
		if scheme == "https" {
			port = "443"
		} else {
			port = "8080"
		}
	case scheme != "" && port == "":
		if scheme == "https" {
			port = "443"
		} else {
			port = "8080"
		}
	}

	if scheme != "http" && scheme != "https" {
		return "", protocol.NewError(protocol.KindArgument, "endpoint scheme must be http or https: %q", raw)
	}

	return fmt.Sprintf("%s://%s:%s", scheme, host, port), nil
}
