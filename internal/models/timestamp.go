package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Gerrit timestamps are UTC: "2013-02-01 09:59:32.126000000". Parsing
// accepts any fractional second after the seconds field.
const (
	timeStampParseLayout  = "2006-01-02 15:04:05"
	timeStampFormatLayout = "2006-01-02 15:04:05.000000000"
)

// TimeStamp is a Gerrit timestamp. JSON null leaves it zero.
type TimeStamp time.Time

func (ts *TimeStamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(timeStampParseLayout, s, time.UTC)
	if err != nil {
		return err
	}
	*ts = TimeStamp(t)
	return nil
}

func (ts TimeStamp) MarshalJSON() ([]byte, error) {
	if ts.Time().IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.Time().UTC().Format(timeStampFormatLayout))
}

func (ts TimeStamp) Time() time.Time {
	return time.Time(ts)
}

func (ts TimeStamp) String() string {
	if ts.Time().IsZero() {
		return ""
	}
	return ts.Time().Format("2006-01-02 15:04")
}
