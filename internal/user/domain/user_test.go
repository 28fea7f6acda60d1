package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_DecodesFormStrings(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"id":"7","firstname":"Ada","lastname":"Lovelace","dob":"1815-12-10","zipcode":"12345"}`), &f)
	require.NoError(t, err)

	assert.Equal(t, IntOf(7), f.ID)
	require.NotNil(t, f.Firstname)
	assert.Equal(t, "Ada", *f.Firstname)
	assert.True(t, f.DOB.Valid)
	assert.Equal(t, "1815-12-10", f.DOB.Date.String())
	assert.Equal(t, IntOf(12345), f.Zipcode)
}

func TestFields_DecodesNumbersAndNulls(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"id":3,"dob":null,"zipcode":""}`), &f)
	require.NoError(t, err)

	assert.Equal(t, IntOf(3), f.ID)
	assert.Nil(t, f.Firstname)
	assert.False(t, f.DOB.Valid)
	assert.False(t, f.Zipcode.Valid)
}

func TestFields_RejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"word zipcode":   `{"zipcode":"abc"}`,
		"float id":       `{"id":1.5}`,
		"bool zipcode":   `{"zipcode":true}`,
		"bad date":       `{"dob":"10/12/1815"}`,
		"numeric date":   `{"dob":18151210}`,
		"number as name": `{"firstname":5}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var f Fields
			assert.Error(t, json.Unmarshal([]byte(payload), &f))
		})
	}
}

func TestNullInt_Value(t *testing.T) {
	v, err := NullInt{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = IntOf(42).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestNullDate_Value(t *testing.T) {
	v, err := NullDate{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	d := NewDate(2000, time.February, 29)
	v, err = DateOf(d).Value()
	require.NoError(t, err)
	assert.Equal(t, d.Time, v)
}

func TestUser_JSONShape(t *testing.T) {
	dob := NewDate(1990, time.January, 2)
	zip := int32(90210)
	users := []User{
		{ID: 1, Created: time.Now(), Firstname: "A", Lastname: "B", DOB: &dob, Zipcode: &zip},
		{ID: 2, Firstname: "C", Lastname: "D"},
	}

	data, err := json.Marshal(users)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"firstname":"A","lastname":"B","dob":"1990-01-02","zipcode":90210},
		{"id":2,"firstname":"C","lastname":"D","dob":null,"zipcode":null}
	]`, string(data))
}

func TestDate_UnmarshalError(t *testing.T) {
	var d Date
	err := d.UnmarshalJSON([]byte(`"2020-13-01"`))
	assert.True(t, errors.Is(err, ErrInvalidDate))
}
