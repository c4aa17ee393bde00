// Package facility holds the tenant facility records mirrored from the
// Nile cloud into the portal's single-table layout, plus the derived
// views the portal serves: flat listings, the site/building/floor tree,
// and the waiting-client summaries.
package facility

import "fmt"

// Site is a stored site record. The partition key is the tenant ID and
// the sort key encodes the site ID.
type Site struct {
	TenantID    string      `json:"pk" dynamodbav:"pk"`
	SortKey     string      `json:"sk" dynamodbav:"sk"`
	Name        string      `json:"name" dynamodbav:"name"`
	Description string      `json:"description" dynamodbav:"description"`
	Address     interface{} `json:"address" dynamodbav:"address"`
}

// Building is a stored building record. Its sort key encodes the parent
// site ID and the building ID.
type Building struct {
	TenantID    string      `json:"pk" dynamodbav:"pk"`
	SortKey     string      `json:"sk" dynamodbav:"sk"`
	Name        string      `json:"name" dynamodbav:"name"`
	Description string      `json:"description" dynamodbav:"description"`
	Address     interface{} `json:"address" dynamodbav:"address"`
}

// Floor is a stored floor record. Its sort key encodes the parent site
// and building IDs plus the floor ID. Number mirrors whatever the
// upstream sent (integer or string).
type Floor struct {
	TenantID    string      `json:"pk" dynamodbav:"pk"`
	SortKey     string      `json:"sk" dynamodbav:"sk"`
	Name        string      `json:"name" dynamodbav:"name"`
	Description string      `json:"description" dynamodbav:"description"`
	Number      interface{} `json:"number" dynamodbav:"number"`
}

// Segment is a stored network segment record. The optional detail
// blocks are only present when the upstream payload carried them.
type Segment struct {
	TenantID       string          `json:"pk" dynamodbav:"pk"`
	SortKey        string          `json:"sk" dynamodbav:"sk"`
	ID             string          `json:"id" dynamodbav:"id"`
	Name           string          `json:"name" dynamodbav:"name"`
	Encrypted      bool            `json:"encrypted" dynamodbav:"encrypted"`
	Version        interface{}     `json:"version" dynamodbav:"version"`
	UseTags        bool            `json:"useTags" dynamodbav:"useTags"`
	SettingStatus  string          `json:"settingStatus" dynamodbav:"settingStatus"`
	TagIDs         []string        `json:"tagIds" dynamodbav:"tagIds"`
	Details        *SegmentDetails `json:"segmentDetails,omitempty" dynamodbav:"segmentDetails,omitempty"`
	GeoScope       *GeoScope       `json:"geoScope,omitempty" dynamodbav:"geoScope,omitempty"`
	LinkedSettings *LinkedSettings `json:"linkedSettings,omitempty" dynamodbav:"linkedSettings,omitempty"`
}

// SegmentDetails carries the wired/guest capability flags of a segment.
type SegmentDetails struct {
	Name                     string   `json:"name" dynamodbav:"name"`
	URLs                     []string `json:"urls" dynamodbav:"urls"`
	PopTunnelEnabled         bool     `json:"popTunnelEnabled" dynamodbav:"popTunnelEnabled"`
	WiredSelfRegisterEnabled bool     `json:"wiredSelfRegisterEnabled" dynamodbav:"wiredSelfRegisterEnabled"`
	WiredSsoEnabled          bool     `json:"wiredSsoEnabled" dynamodbav:"wiredSsoEnabled"`
	WiredGuestEnabled        bool     `json:"wiredGuestEnabled" dynamodbav:"wiredGuestEnabled"`
}

// GeoScope lists the locations a segment is scoped to.
type GeoScope struct {
	SiteIDs     []string      `json:"siteIds" dynamodbav:"siteIds"`
	BuildingIDs []string      `json:"buildingIds" dynamodbav:"buildingIds"`
	ZoneIDs     []string      `json:"zoneIds" dynamodbav:"zoneIds"`
	GlobalInfo  []interface{} `json:"globalInfo" dynamodbav:"globalInfo"`
}

// LinkedSettings groups the settings objects attached to a segment.
type LinkedSettings struct {
	GlobalSettings   []interface{} `json:"globalSettings" dynamodbav:"globalSettings"`
	SiteSettings     []SiteSetting `json:"siteSettings" dynamodbav:"siteSettings"`
	BuildingSettings []interface{} `json:"buildingSettings" dynamodbav:"buildingSettings"`
	ZoneSettings     []interface{} `json:"zoneSettings" dynamodbav:"zoneSettings"`
}

// SiteSetting is one site-scoped setting reference. Extra can be null,
// an array, or an object depending on the setting type.
type SiteSetting struct {
	Type     string      `json:"type" dynamodbav:"type"`
	ID       string      `json:"id" dynamodbav:"id"`
	Location string      `json:"location" dynamodbav:"location"`
	Extra    interface{} `json:"extra,omitempty" dynamodbav:"extra,omitempty"`
}

// SiteFromPayload builds a stored site record from an upstream payload
// entry. It returns false when a required field is missing, in which
// case the entry is skipped rather than failing the whole sync.
func SiteFromPayload(p map[string]interface{}) (*Site, bool) {
	tenantID, okTenant := stringField(p, "tenantId")
	id, okID := stringField(p, "id")
	name, okName := stringField(p, "name")
	address, okAddress := p["address"]
	if !okTenant || !okID || !okName || !okAddress {
		return nil, false
	}

	return &Site{
		TenantID:    tenantID,
		SortKey:     SiteSortKey(id),
		Name:        name,
		Description: stringFieldOr(p, "description", "Unknown"),
		Address:     address,
	}, true
}

// BuildingFromPayload builds a stored building record from an upstream
// payload entry, returning false when a required field is missing.
func BuildingFromPayload(p map[string]interface{}) (*Building, bool) {
	tenantID, okTenant := stringField(p, "tenantId")
	siteID, okSite := stringField(p, "siteId")
	id, okID := stringField(p, "id")
	name, okName := stringField(p, "name")
	address, okAddress := p["address"]
	if !okTenant || !okSite || !okID || !okName || !okAddress {
		return nil, false
	}

	return &Building{
		TenantID:    tenantID,
		SortKey:     BuildingSortKey(siteID, id),
		Name:        name,
		Description: stringFieldOr(p, "description", "Unknown"),
		Address:     address,
	}, true
}

// FloorFromPayload builds a stored floor record from an upstream
// payload entry, returning false when a required field is missing.
func FloorFromPayload(p map[string]interface{}) (*Floor, bool) {
	tenantID, okTenant := stringField(p, "tenantId")
	siteID, okSite := stringField(p, "siteId")
	buildingID, okBuilding := stringField(p, "buildingId")
	id, okID := stringField(p, "id")
	name, okName := stringField(p, "name")
	number, okNumber := p["number"]
	if !okTenant || !okSite || !okBuilding || !okID || !okName || !okNumber {
		return nil, false
	}

	return &Floor{
		TenantID:    tenantID,
		SortKey:     FloorSortKey(siteID, buildingID, id),
		Name:        name,
		Description: stringFieldOr(p, "description", "Unknown"),
		Number:      number,
	}, true
}

// SegmentFromPayload builds a stored segment record from an upstream
// payload entry, returning false when a required field is missing. The
// detail blocks are attached only when the payload carries them
// non-empty.
func SegmentFromPayload(p map[string]interface{}) (*Segment, bool) {
	tenantID, okTenant := stringField(p, "tenantId")
	id, okID := stringField(p, "id")
	name, okName := stringField(p, "instanceName")
	version, okVersion := p["version"]
	if !okTenant || !okID || !okName || !okVersion {
		return nil, false
	}

	seg := &Segment{
		TenantID:      tenantID,
		SortKey:       SegmentSortKey(id),
		ID:            id,
		Name:          name,
		Encrypted:     boolField(p, "encrypted", true),
		Version:       version,
		UseTags:       boolField(p, "useTags", false),
		SettingStatus: stringFieldOr(p, "settingStatus", "UNKNOWN"),
		TagIDs:        stringSliceField(p, "tagIds"),
	}

	if info, ok := mapField(p, "segment"); ok && len(info) > 0 {
		seg.Details = &SegmentDetails{
			Name:                     stringFieldOr(info, "name", ""),
			URLs:                     stringSliceField(info, "urls"),
			PopTunnelEnabled:         boolField(info, "popTunnelEnabled", false),
			WiredSelfRegisterEnabled: boolField(info, "wiredSelfRegisterEnabled", false),
			WiredSsoEnabled:          boolField(info, "wiredSsoEnabled", false),
			WiredGuestEnabled:        boolField(info, "wiredGuestEnabled", false),
		}
	}

	if scope, ok := mapField(p, "geoScope"); ok && len(scope) > 0 {
		seg.GeoScope = &GeoScope{
			SiteIDs:     stringSliceField(scope, "siteIds"),
			BuildingIDs: stringSliceField(scope, "buildingIds"),
			ZoneIDs:     stringSliceField(scope, "zoneIds"),
			GlobalInfo:  sliceField(scope, "globalInfo"),
		}
	}

	if linked, ok := mapField(p, "linkedSettings"); ok && len(linked) > 0 {
		settings := &LinkedSettings{
			GlobalSettings:   sliceField(linked, "globalSettings"),
			SiteSettings:     []SiteSetting{},
			BuildingSettings: sliceField(linked, "buildingSettings"),
			ZoneSettings:     sliceField(linked, "zoneSettings"),
		}
		for _, raw := range sliceField(linked, "siteSettings") {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			setting := SiteSetting{
				Type:     stringFieldOr(entry, "type", ""),
				ID:       stringFieldOr(entry, "id", ""),
				Location: stringFieldOr(entry, "location", ""),
			}
			if extra, ok := entry["extra"]; ok {
				setting.Extra = extra
			}
			settings.SiteSettings = append(settings.SiteSettings, setting)
		}
		seg.LinkedSettings = settings
	}

	return seg, true
}

// stringField reads a required string field. A present but empty or
// non-string value counts as missing.
func stringField(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// stringFieldOr reads an optional field as a string, falling back to
// def when the key is absent.
func stringFieldOr(m map[string]interface{}, key, def string) string {
	v, ok := m[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func boolField(m map[string]interface{}, key string, def bool) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func mapField(m map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	nested, ok := v.(map[string]interface{})
	return nested, ok
}

func sliceField(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if s, ok := v.([]interface{}); ok {
			return s
		}
	}
	return []interface{}{}
}

// stringSliceField reads a list field, keeping only its string
// elements. Absent or malformed lists come back empty.
func stringSliceField(m map[string]interface{}, key string) []string {
	out := []string{}
	for _, v := range sliceField(m, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
