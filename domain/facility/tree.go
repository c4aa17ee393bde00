package facility

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Tree is the hierarchical view of a tenant's facilities. Segments sit
// outside the site hierarchy, so they ride along as a flat list.
type Tree struct {
	TenantID string        `json:"tenantid"`
	Sites    []*TreeSite   `json:"sites"`
	Segments []TreeSegment `json:"segments,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// TreeSegment is the minimal segment pair served alongside the tree.
type TreeSegment struct {
	TenantID string `json:"tenantid"`
	Segment  string `json:"segment"`
}

// TreeSite is one site node with its buildings.
type TreeSite struct {
	SiteID    string                 `json:"siteid"`
	Name      string                 `json:"name"`
	Address   map[string]interface{} `json:"address"`
	Buildings []*TreeBuilding        `json:"buildings"`
}

// TreeBuilding is one building node with its floors.
type TreeBuilding struct {
	BuildingID string                 `json:"bldgid"`
	Name       string                 `json:"name"`
	Address    map[string]interface{} `json:"address"`
	Floors     []*TreeFloor           `json:"floors"`
}

// TreeFloor is one floor leaf.
type TreeFloor struct {
	FloorID string `json:"floorid"`
	Name    string `json:"name"`
	Number  string `json:"number"`
}

// BuildTree folds flat site, building, and floor records into the
// tenant hierarchy. Records whose keys cannot be parsed are skipped. A
// building whose site record is absent seeds the site node from its
// own fields, so partial mirrors still produce a navigable tree; a
// floor whose building node is absent is dropped. The fold never fails
// the request: any panic degrades to an empty tree carrying the error
// text.
func BuildTree(tenantID string, sites []Site, buildings []Building, floors []Floor) (tree *Tree) {
	defer func() {
		if r := recover(); r != nil {
			tree = &Tree{
				TenantID: tenantID,
				Sites:    []*TreeSite{},
				Error:    fmt.Sprintf("%v", r),
			}
		}
	}()

	tree = &Tree{TenantID: tenantID, Sites: []*TreeSite{}}

	for _, s := range sites {
		siteID, err := ParseSiteKey(s.SortKey)
		if err != nil || s.TenantID == "" {
			continue
		}
		tree.site(siteID, s.Name, s.Address)
	}

	for _, b := range buildings {
		siteID, buildingID, err := ParseBuildingKey(b.SortKey)
		if err != nil || b.TenantID == "" {
			continue
		}
		site := tree.site(siteID, b.Name, b.Address)
		site.building(buildingID, b.Name, b.Address)
	}

	for _, f := range floors {
		siteID, buildingID, floorID, err := ParseFloorKey(f.SortKey)
		if err != nil || f.TenantID == "" {
			continue
		}
		building := tree.findBuilding(siteID, buildingID)
		if building == nil {
			continue
		}
		building.Floors = append(building.Floors, &TreeFloor{
			FloorID: floorID,
			Name:    f.Name,
			Number:  NumberString(f.Number),
		})
	}

	return tree
}

// site finds the site node by ID or creates it from the fields of the
// record being folded.
func (t *Tree) site(siteID, name string, address interface{}) *TreeSite {
	for _, s := range t.Sites {
		if s.SiteID == siteID {
			return s
		}
	}
	s := &TreeSite{
		SiteID:    siteID,
		Name:      name,
		Address:   ParseAddress(address),
		Buildings: []*TreeBuilding{},
	}
	t.Sites = append(t.Sites, s)
	return s
}

// building finds the building node by ID or creates it from the fields
// of the record being folded.
func (s *TreeSite) building(buildingID, name string, address interface{}) *TreeBuilding {
	for _, b := range s.Buildings {
		if b.BuildingID == buildingID {
			return b
		}
	}
	b := &TreeBuilding{
		BuildingID: buildingID,
		Name:       name,
		Address:    ParseAddress(address),
		Floors:     []*TreeFloor{},
	}
	s.Buildings = append(s.Buildings, b)
	return b
}

// findBuilding locates an existing building node without creating
// anything, so orphaned floors fall away instead of fabricating their
// ancestors.
func (t *Tree) findBuilding(siteID, buildingID string) *TreeBuilding {
	for _, s := range t.Sites {
		if s.SiteID != siteID {
			continue
		}
		for _, b := range s.Buildings {
			if b.BuildingID == buildingID {
				return b
			}
		}
	}
	return nil
}

// ParseAddress normalizes a stored address into a map. Addresses
// arrive from upstream either as JSON-encoded strings or as objects;
// anything unparseable becomes an empty map rather than an error.
func ParseAddress(v interface{}) map[string]interface{} {
	switch a := v.(type) {
	case map[string]interface{}:
		return a
	case string:
		parsed := map[string]interface{}{}
		if err := json.Unmarshal([]byte(a), &parsed); err != nil {
			return map[string]interface{}{}
		}
		return parsed
	default:
		return map[string]interface{}{}
	}
}

// NumberString renders a stored floor number as a string. Floor
// numbers arrive as JSON numbers or strings depending on the upstream
// tenant configuration.
func NumberString(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case json.Number:
		return n.String()
	default:
		return fmt.Sprintf("%v", n)
	}
}
