package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var sdb sq.StatementBuilderType

func init() {
	sdb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// ErrNotFound is wrapped by the getters when the requested object does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an optimistic update finds a version other than the expected one
var ErrConflict = errors.New("version conflict")

// Point represents bidimentional coordinates (latitude, longitude)
type Point [2]float64

// Value implements the driver.Value interface
func (p Point) Value() (driver.Value, error) {
	return fmt.Sprintf("(%f,%f)", p[0], p[1]), nil
}

// Scan implements the sql.Scanner interface
func (p *Point) Scan(val interface{}) error {
	var s string
	switch v := val.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return errors.New("Scan: Invalid val type for scanning")
	}
	_, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "(%f,%f)", &p[0], &p[1])
	return err
}

// NullPoint is a Point that may be absent, for use with nullable columns
type NullPoint struct {
	Point Point
	Valid bool
}

// Value implements the driver.Value interface
func (p NullPoint) Value() (driver.Value, error) {
	if !p.Valid {
		return nil, nil
	}
	return p.Point.Value()
}

// Scan implements the sql.Scanner interface
func (p *NullPoint) Scan(val interface{}) error {
	if val == nil {
		p.Point, p.Valid = Point{}, false
		return nil
	}
	p.Valid = true
	return p.Point.Scan(val)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
