package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

// GetBBox derives [minx, miny, maxx, maxy] from a GeoJSON geometry given as
// a JSON string or a decoded object. A missing geometry yields nil without
// error.
func GetBBox(spatial any) ([]float64, error) {
	var data []byte
	switch v := spatial.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		data = []byte(v)
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding spatial extent: %v", oerrors.ErrParse, err)
		}
		data = b
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: spatial extent is not a GeoJSON geometry: %v", oerrors.ErrParse, err)
	}
	geom := g.Geometry()
	if geom == nil {
		return nil, nil
	}
	b := geom.Bound()
	return []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}, nil
}
