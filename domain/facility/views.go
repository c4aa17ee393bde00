package facility

// SiteListing is the flat site row served by the sites endpoint.
type SiteListing struct {
	TenantID string      `json:"tenantid"`
	SiteID   string      `json:"siteid"`
	Name     string      `json:"name"`
	Address  interface{} `json:"address"`
}

// BuildingListing is the flat building row, enriched with the parent
// site name.
type BuildingListing struct {
	TenantID   string      `json:"tenantid"`
	SiteID     string      `json:"siteid"`
	SiteName   string      `json:"siteName"`
	BuildingID string      `json:"bldgid"`
	Name       string      `json:"name"`
	Address    interface{} `json:"address"`
}

// FloorListing is the flat floor row, enriched with the parent site
// and building names. Number is always rendered as a string.
type FloorListing struct {
	TenantID     string `json:"tenantid"`
	SiteID       string `json:"siteid"`
	SiteName     string `json:"siteName"`
	BuildingID   string `json:"bldgid"`
	BuildingName string `json:"buildingName"`
	FloorID      string `json:"floorid"`
	Name         string `json:"name"`
	Number       string `json:"number"`
}

// SegmentListing is the flat segment row. Segment carries the display
// name twice under its historical key for portal compatibility.
type SegmentListing struct {
	TenantID       string          `json:"tenantid"`
	Segment        string          `json:"segment"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Encrypted      bool            `json:"encrypted"`
	Version        interface{}     `json:"version"`
	UseTags        bool            `json:"useTags"`
	SettingStatus  string          `json:"settingStatus"`
	TagIDs         []string        `json:"tagIds"`
	Details        *SegmentDetails `json:"segmentDetails,omitempty"`
	GeoScope       *GeoScope       `json:"geoScope,omitempty"`
	LinkedSettings *LinkedSettings `json:"linkedSettings,omitempty"`
}

// Listing projects a stored site record into its flat row.
func (s Site) Listing() (SiteListing, error) {
	siteID, err := ParseSiteKey(s.SortKey)
	if err != nil {
		return SiteListing{}, err
	}
	return SiteListing{
		TenantID: s.TenantID,
		SiteID:   siteID,
		Name:     s.Name,
		Address:  s.Address,
	}, nil
}

// SiteID extracts the parent site ID from a building's sort key.
func (b Building) SiteID() (string, error) {
	siteID, _, err := ParseBuildingKey(b.SortKey)
	return siteID, err
}

// BuildingID extracts the building ID from its sort key.
func (b Building) BuildingID() (string, error) {
	_, buildingID, err := ParseBuildingKey(b.SortKey)
	return buildingID, err
}

// Listing projects a stored building record into its flat row using
// the resolved parent site name.
func (b Building) Listing(siteName string) (BuildingListing, error) {
	siteID, buildingID, err := ParseBuildingKey(b.SortKey)
	if err != nil {
		return BuildingListing{}, err
	}
	return BuildingListing{
		TenantID:   b.TenantID,
		SiteID:     siteID,
		SiteName:   siteName,
		BuildingID: buildingID,
		Name:       b.Name,
		Address:    b.Address,
	}, nil
}

// Listing projects a stored floor record into its flat row using the
// resolved parent names.
func (f Floor) Listing(siteName, buildingName string) (FloorListing, error) {
	siteID, buildingID, floorID, err := ParseFloorKey(f.SortKey)
	if err != nil {
		return FloorListing{}, err
	}
	return FloorListing{
		TenantID:     f.TenantID,
		SiteID:       siteID,
		SiteName:     siteName,
		BuildingID:   buildingID,
		BuildingName: buildingName,
		FloorID:      floorID,
		Name:         f.Name,
		Number:       NumberString(f.Number),
	}, nil
}

// Listing projects a stored segment record into its flat row. Records
// written by older sync revisions may lack the newer attributes, so
// the nil cases fall back to the values the portal expects.
func (s Segment) Listing() SegmentListing {
	version := s.Version
	if version == nil {
		version = ""
	}
	tagIDs := s.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return SegmentListing{
		TenantID:       s.TenantID,
		Segment:        s.Name,
		ID:             s.ID,
		Name:           s.Name,
		Encrypted:      s.Encrypted,
		Version:        version,
		UseTags:        s.UseTags,
		SettingStatus:  s.SettingStatus,
		TagIDs:         tagIDs,
		Details:        s.Details,
		GeoScope:       s.GeoScope,
		LinkedSettings: s.LinkedSettings,
	}
}

// Client is the flattened summary of a client waiting for MAC auth
// approval. Upstream omits fields freely, so every field falls back to
// "Unknown". Port, GeoScope, and StaticIP keep their upstream types,
// which vary by switch model.
type Client struct {
	ID              string      `json:"id"`
	MACAddress      string      `json:"macAddress"`
	TenantID        string      `json:"tenantid"`
	SiteID          string      `json:"siteid"`
	BuildingID      string      `json:"buildingid"`
	FloorID         string      `json:"floorid"`
	ZoneID          string      `json:"zoneid"`
	SegmentID       string      `json:"segmentid"`
	DeviceID        string      `json:"deviceid"`
	Port            interface{} `json:"port"`
	State           string      `json:"state"`
	GeoScope        interface{} `json:"geoScope"`
	AuthenticatedBy string      `json:"authenticatedBy"`
	StaticIP        interface{} `json:"staticip"`
	IPAddress       string      `json:"ipaddress"`
}

// ClientFromPayload flattens one upstream client entry. Entries
// without a clientConfig object are skipped.
func ClientFromPayload(p map[string]interface{}) (*Client, bool) {
	cfg, ok := mapField(p, "clientConfig")
	if !ok || len(cfg) == 0 {
		return nil, false
	}
	return &Client{
		ID:              stringFieldOr(cfg, "id", "Unknown"),
		MACAddress:      stringFieldOr(cfg, "macAddress", "Unknown"),
		TenantID:        stringFieldOr(cfg, "tenantId", "Unknown"),
		SiteID:          stringFieldOr(cfg, "siteId", "Unknown"),
		BuildingID:      stringFieldOr(cfg, "buildingId", "Unknown"),
		FloorID:         stringFieldOr(cfg, "floorId", "Unknown"),
		ZoneID:          stringFieldOr(cfg, "zoneId", "Unknown"),
		SegmentID:       stringFieldOr(cfg, "segmentId", "Unknown"),
		DeviceID:        stringFieldOr(cfg, "deviceId", "Unknown"),
		Port:            fieldOr(cfg, "port", "Unknown"),
		State:           stringFieldOr(cfg, "state", "Unknown"),
		GeoScope:        fieldOr(cfg, "geoScope", "Unknown"),
		AuthenticatedBy: stringFieldOr(cfg, "authenticatedBy", "Unknown"),
		StaticIP:        fieldOr(cfg, "staticIp", "Unknown"),
		IPAddress:       stringFieldOr(cfg, "ipAddress", "Unknown"),
	}, true
}

// fieldOr reads an optional field keeping its upstream type, falling
// back to def when the key is absent.
func fieldOr(m map[string]interface{}, key string, def interface{}) interface{} {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
