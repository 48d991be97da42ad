package place

import (
	"context"
	"math"
	"sort"

	"backend-ping/internal/shared/apperr"
	"backend-ping/internal/shared/geo"
)

// SearchNearby finds public places (plus the caller's private ones) within
// radiusKm of the center. The SQL bounding box is a superset pre-filter;
// the haversine distance computed here is the authoritative cutoff.
func (s *Service) SearchNearby(ctx context.Context, callerID string, q NearbyQuery) ([]NearbyResult, error) {
	if q.RadiusKm <= 0 {
		return nil, apperr.InvalidArgument("radius must be positive")
	}
	if q.Lat < -90 || q.Lat > 90 || q.Lng < -180 || q.Lng > 180 {
		return nil, apperr.InvalidArgument("coordinates out of range")
	}
	// The bounding-box longitude delta diverges near the poles.
	if math.Abs(q.Lat) > 85 {
		return nil, apperr.InvalidArgument("latitude too close to a pole")
	}

	box := geo.BoxAround(q.Lat, q.Lng, q.RadiusKm)

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.address, p.lat, p.lng, p.owner_id, p.visibility, p.type,
		       p.claimed, p.favorite_count, p.created_at,
		       EXISTS (SELECT 1 FROM place_favorites pf WHERE pf.place_id=p.id AND pf.user_id=$5)
		FROM places p
		WHERE p.is_deleted=false
		  AND p.lat BETWEEN $1 AND $2
		  AND p.lng BETWEEN $3 AND $4
		  AND (p.visibility='public' OR p.owner_id=$5)
		  AND ($6 = '' OR EXISTS (
		        SELECT 1 FROM activities a
		        WHERE a.place_id=p.id AND lower(a.name)=lower($6)))
		  AND ($7 = '' OR EXISTS (
		        SELECT 1 FROM activities a
		        JOIN activity_kinds k ON k.id=a.kind_id
		        WHERE a.place_id=p.id AND lower(k.name)=lower($7)))
	`, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, callerID, q.ActivityName, q.KindName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []NearbyResult
	for rows.Next() {
		var r NearbyResult
		err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Lat, &r.Lng, &r.OwnerID,
			&r.Visibility, &r.Type, &r.Claimed, &r.FavoriteCount, &r.CreatedAt, &r.IsFavorited)
		if err != nil {
			return nil, err
		}
		r.DistanceKm = geo.HaversineKm(q.Lat, q.Lng, r.Lat, r.Lng)
		if r.DistanceKm > q.RadiusKm {
			continue
		}
		r.IsOwner = r.OwnerID == callerID
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > s.resultCap {
		results = results[:s.resultCap]
	}
	if len(results) == 0 {
		return []NearbyResult{}, nil
	}

	if err := s.attachActivities(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// attachActivities fills the distinct activity and kind name collections for
// each surviving result in one query.
func (s *Service) attachActivities(ctx context.Context, results []NearbyResult) error {
	ids := make([]string, len(results))
	index := make(map[string]int, len(results))
	for i, r := range results {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := s.db.Query(ctx, `
		SELECT a.place_id, a.name, COALESCE(k.name,'')
		FROM activities a
		LEFT JOIN activity_kinds k ON k.id = a.kind_id
		WHERE a.place_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	seenActivity := make(map[string]map[string]bool)
	seenKind := make(map[string]map[string]bool)
	for rows.Next() {
		var placeID, name, kind string
		if err := rows.Scan(&placeID, &name, &kind); err != nil {
			return err
		}
		i, ok := index[placeID]
		if !ok {
			continue
		}
		if seenActivity[placeID] == nil {
			seenActivity[placeID] = map[string]bool{}
			seenKind[placeID] = map[string]bool{}
		}
		if name != "" && !seenActivity[placeID][name] {
			seenActivity[placeID][name] = true
			results[i].ActivityNames = append(results[i].ActivityNames, name)
		}
		if kind != "" && !seenKind[placeID][kind] {
			seenKind[placeID][kind] = true
			results[i].KindNames = append(results[i].KindNames, kind)
		}
	}
	return rows.Err()
}
