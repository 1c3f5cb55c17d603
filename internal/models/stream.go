package models

// MinStreamCoordinates is the floor below which a stream carries too little
// signal to aggregate; shorter streams are rejected whole.
const MinStreamCoordinates = 10

// LatLng is one validated coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// StreamBundle mirrors the key_by_type=true wire shape of
// GET /activities/{id}/streams. The latlng entries stay loosely typed so a
// malformed pair fails the bounds check instead of the whole decode.
type StreamBundle struct {
	Latlng struct {
		Data [][]float64 `json:"data"`
	} `json:"latlng"`
	Altitude struct {
		Data []float64 `json:"data"`
	} `json:"altitude"`
	Velocity struct {
		Data []float64 `json:"data"`
	} `json:"velocity_smooth"`
	Distance struct {
		Data []float64 `json:"data"`
	} `json:"distance"`
	Time struct {
		Data []float64 `json:"data"`
	} `json:"time"`
}

// ActivityStream is a validated per-activity telemetry sequence. The
// altitude/velocity/distance/time series are index-aligned with Coordinates
// when present; they may be shorter or empty.
type ActivityStream struct {
	ID          int64     `json:"id"`
	Coordinates []LatLng  `json:"coordinates"`
	Altitude    []float64 `json:"altitude"`
	Velocity    []float64 `json:"velocity"`
	Distance    []float64 `json:"distance"`
	Time        []float64 `json:"time"`
}

// Validate builds an ActivityStream from a raw bundle. Out-of-range and
// malformed coordinate pairs are dropped, not clamped; the parallel series
// drop the same indexes to stay aligned. ok is false when fewer than
// MinStreamCoordinates pairs survive.
func (b *StreamBundle) Validate(id int64) (ActivityStream, bool) {
	stream := ActivityStream{ID: id}
	for i, pair := range b.Latlng.Data {
		if len(pair) != 2 {
			continue
		}
		p := LatLng{Lat: pair[0], Lng: pair[1]}
		if !p.Valid() {
			continue
		}
		stream.Coordinates = append(stream.Coordinates, p)
		if i < len(b.Altitude.Data) {
			stream.Altitude = append(stream.Altitude, b.Altitude.Data[i])
		}
		if i < len(b.Velocity.Data) {
			stream.Velocity = append(stream.Velocity, b.Velocity.Data[i])
		}
		if i < len(b.Distance.Data) {
			stream.Distance = append(stream.Distance, b.Distance.Data[i])
		}
		if i < len(b.Time.Data) {
			stream.Time = append(stream.Time, b.Time.Data[i])
		}
	}
	if len(stream.Coordinates) < MinStreamCoordinates {
		return ActivityStream{}, false
	}
	return stream, true
}
