package facility

import (
	"fmt"
	"strings"
)

// Sort key prefixes for the single-table layout. Every record for a
// tenant lives under the same partition key; the prefix selects the
// record type and the remaining "#"-delimited parts encode the
// location path.
const (
	SitePrefix     = "S#"
	BuildingPrefix = "B#"
	FloorPrefix    = "F#"
	SegmentPrefix  = "SEG#"
)

// SiteSortKey builds the sort key for a site record.
func SiteSortKey(siteID string) string {
	return SitePrefix + siteID
}

// BuildingSortKey builds the sort key for a building record.
func BuildingSortKey(siteID, buildingID string) string {
	return BuildingPrefix + siteID + "#" + buildingID
}

// FloorSortKey builds the sort key for a floor record.
func FloorSortKey(siteID, buildingID, floorID string) string {
	return FloorPrefix + siteID + "#" + buildingID + "#" + floorID
}

// SegmentSortKey builds the sort key for a segment record.
func SegmentSortKey(segmentID string) string {
	return SegmentPrefix + segmentID
}

// ParseSiteKey extracts the site ID from a site sort key.
func ParseSiteKey(sk string) (string, error) {
	parts, err := splitKey(sk, SitePrefix, 2)
	if err != nil {
		return "", err
	}
	return parts[1], nil
}

// ParseBuildingKey extracts the site and building IDs from a building
// sort key.
func ParseBuildingKey(sk string) (siteID, buildingID string, err error) {
	parts, err := splitKey(sk, BuildingPrefix, 3)
	if err != nil {
		return "", "", err
	}
	return parts[1], parts[2], nil
}

// ParseFloorKey extracts the site, building, and floor IDs from a
// floor sort key.
func ParseFloorKey(sk string) (siteID, buildingID, floorID string, err error) {
	parts, err := splitKey(sk, FloorPrefix, 4)
	if err != nil {
		return "", "", "", err
	}
	return parts[1], parts[2], parts[3], nil
}

// ParseSegmentKey extracts the segment ID from a segment sort key.
func ParseSegmentKey(sk string) (string, error) {
	parts, err := splitKey(sk, SegmentPrefix, 2)
	if err != nil {
		return "", err
	}
	return parts[1], nil
}

// splitKey checks the prefix and the exact part count. IDs must not
// contain the "#" delimiter, so a surplus part means a malformed key.
func splitKey(sk, prefix string, parts int) ([]string, error) {
	if !strings.HasPrefix(sk, prefix) {
		return nil, fmt.Errorf("sort key %q does not have prefix %q", sk, prefix)
	}
	split := strings.Split(sk, "#")
	if len(split) != parts {
		return nil, fmt.Errorf("sort key %q has %d parts, want %d", sk, len(split), parts)
	}
	return split, nil
}
