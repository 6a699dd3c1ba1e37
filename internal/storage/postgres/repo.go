package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"ratescope/internal/domain"
)

// nameSearchLimit caps SearchByName result sets.
const nameSearchLimit = 50

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Upsert(ctx context.Context, h domain.HotelRecord) error {
	var amenDoc, amenFlags []byte
	if len(h.Amenities.Doc) > 0 {
		amenDoc = h.Amenities.Doc
	}
	if h.Amenities.Legacy != nil {
		amenFlags, _ = json.Marshal(h.Amenities.Legacy)
	}

	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.Key,
		valStr(h.Name),
		valStr(h.Description),
		valStr(h.Country),
		valStr(h.State),
		valStr(h.City),
		valF64(h.Lat),
		valF64(h.Lon),
		valInt(h.StarRating),
		valStr(h.CheckInTime),
		valStr(h.CheckOutTime),
		valJSON(h.NearbyPlaces),
		valJSON(amenDoc),
		valJSON(amenFlags),
	)
	return err
}

// FindByKey accepts the business key or, for callers still holding the
// surrogate identifier, its decimal form.
func (r *Repo) FindByKey(ctx context.Context, keyOrID string) (domain.HotelRecord, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, findByKeySQL, keyOrID))
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.HotelRecord{}, err
	}
	if id, perr := strconv.ParseInt(keyOrID, 10, 64); perr == nil {
		return scanHotel(r.db.QueryRowContext(ctx, findByIDSQL, id))
	}
	return domain.HotelRecord{}, domain.ErrNotFound
}

func (r *Repo) SearchByCity(ctx context.Context, city string, page, pageSize int) (domain.HotelsPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countByCitySQL, city).Scan(&total); err != nil {
		return domain.HotelsPage{}, err
	}

	rows, err := r.db.QueryContext(ctx, searchByCitySQL, city, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	defer rows.Close()

	var items []domain.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return domain.HotelsPage{}, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return domain.HotelsPage{}, err
	}
	return domain.HotelsPage{Items: items, Total: total}, nil
}

func (r *Repo) SearchByName(ctx context.Context, q domain.NameSearch) ([]domain.HotelRecord, error) {
	// typed filters only; no dynamic query objects
	where := []string{"name ILIKE '%' || $1 || '%'", "is_active"}
	args := []any{q.Term}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		where = append(where, fmt.Sprintf("LOWER(%s) = LOWER($%d)", col, len(args)))
	}
	add("country", q.Country)
	add("state", q.State)
	add("city", q.City)

	sqlStr := `SELECT ` + hotelColumns + ` FROM hotels WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY name LIMIT %d", nameSearchLimit)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *Repo) ReplaceCompetitors(ctx context.Context, key string, refs []domain.CompetitorRef) error {
	if refs == nil {
		refs = []domain.CompetitorRef{}
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return r.execOnKey(ctx, replaceCompetitorsSQL, key, string(b))
}

func (r *Repo) ReplaceSuggested(ctx context.Context, key string, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	return r.execOnKey(ctx, replaceSuggestedSQL, key, pq.Array(keys))
}

func (r *Repo) execOnKey(ctx context.Context, query, key string, arg any) error {
	res, err := r.db.ExecContext(ctx, query, key, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) CityByName(ctx context.Context, name string) (domain.Location, error) {
	var loc domain.Location
	err := r.db.QueryRowContext(ctx, cityByNameSQL, name).Scan(&loc.City, &loc.State, &loc.Country)
	if err == sql.ErrNoRows {
		return domain.Location{}, domain.ErrCityNotFound
	}
	if err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanHotel(row rowScanner) (domain.HotelRecord, error) {
	var h domain.HotelRecord
	var (
		name, desc, country, state, city sql.NullString
		lat, lon                         sql.NullFloat64
		stars                            sql.NullInt64
		checkIn, checkOut                sql.NullString
		nearby, amenDoc, amenFlags       []byte
		competitors                      []byte
		suggested                        pq.StringArray
	)
	if err := row.Scan(
		&h.ID,
		&h.Key,
		&name, &desc, &country, &state, &city,
		&lat, &lon,
		&stars,
		&checkIn, &checkOut,
		&nearby, &amenDoc, &amenFlags,
		&h.IsActive,
		&competitors,
		&suggested,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HotelRecord{}, domain.ErrNotFound
		}
		return domain.HotelRecord{}, err
	}

	setStr := func(dst **string, v sql.NullString) {
		if v.Valid {
			s := v.String
			*dst = &s
		}
	}
	setStr(&h.Name, name)
	setStr(&h.Description, desc)
	setStr(&h.Country, country)
	setStr(&h.State, state)
	setStr(&h.City, city)
	setStr(&h.CheckInTime, checkIn)
	setStr(&h.CheckOutTime, checkOut)
	if lat.Valid {
		v := lat.Float64
		h.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		h.Lon = &v
	}
	if stars.Valid {
		s := int(stars.Int64)
		h.StarRating = &s
	}
	if len(nearby) > 0 {
		h.NearbyPlaces = append([]byte(nil), nearby...)
	}
	if len(amenDoc) > 0 {
		h.Amenities.Doc = append([]byte(nil), amenDoc...)
	} else if len(amenFlags) > 0 {
		var flags domain.LegacyAmenityFlags
		if err := json.Unmarshal(amenFlags, &flags); err == nil {
			h.Amenities.Legacy = &flags
		}
	}
	if len(competitors) > 0 {
		_ = json.Unmarshal(competitors, &h.Competitors)
	}
	h.SuggestedCompetitors = []string(suggested)
	return h, nil
}
