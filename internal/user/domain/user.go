package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidInt  = errors.New("value is not an integer")
	ErrInvalidDate = errors.New("value is not a YYYY-MM-DD date")
)

// Recognized payload keys.
const (
	FieldID        = "id"
	FieldFirstname = "firstname"
	FieldLastname  = "lastname"
	FieldDOB       = "dob"
	FieldZipcode   = "zipcode"
)

var (
	CreateKeys = []string{FieldFirstname, FieldLastname, FieldDOB, FieldZipcode}
	UpdateKeys = []string{FieldID, FieldFirstname, FieldLastname, FieldDOB, FieldZipcode}
)

type User struct {
	ID        int64     `json:"id"`
	Created   time.Time `json:"-"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	DOB       *Date     `json:"dob"`
	Zipcode   *int32    `json:"zipcode"`
}

// Fields carries the parameters of create, update and delete. Members left
// unset are written as NULL.
type Fields struct {
	ID        NullInt  `json:"id"`
	Firstname *string  `json:"firstname"`
	Lastname  *string  `json:"lastname"`
	DOB       NullDate `json:"dob"`
	Zipcode   NullInt  `json:"zipcode"`
}

// ReadFilter holds limit and offset exactly as the client sent them; the
// database decides whether they are acceptable.
type ReadFilter struct {
	Limit  string
	Offset string
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	d.Time = t
	return nil
}

// NullInt accepts a JSON number, a numeric string, an empty string or null.
// HTML forms post every value as a string, so "12345" is as good as 12345.
type NullInt struct {
	Int   int64
	Valid bool
}

func IntOf(v int64) NullInt {
	return NullInt{Int: v, Valid: true}
}

func (n *NullInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NullInt{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidInt
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = NullInt{}
			return nil
		}
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInt, raw)
	}
	*n = NullInt{Int: v, Valid: true}
	return nil
}

func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Int, 10)), nil
}

func (n NullInt) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Int, nil
}

// NullDate accepts "YYYY-MM-DD", an empty string or null.
type NullDate struct {
	Date  Date
	Valid bool
}

func DateOf(d Date) NullDate {
	return NullDate{Date: d, Valid: true}
}

func (n *NullDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		*n = NullDate{}
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = NullDate{Date: d, Valid: true}
	return nil
}

func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Date.MarshalJSON()
}

func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Date.Time, nil
}
