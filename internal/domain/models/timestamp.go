// internal/domain/models/timestamp.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// TimestampState records how a Timestamp was decoded.
type TimestampState uint8

const (
	TimestampAbsent    TimestampState = iota // field missing or null
	TimestampValid                           // decoded to a time
	TimestampMalformed                       // present but not a recognizable time
)

// Timestamp is a lenient creation-time field. Records written by different
// clients store createdAt as a BSON date, an RFC 3339 string, epoch
// milliseconds, or a {seconds, nanoseconds} document; anything else decodes
// as malformed instead of failing the whole record.
type Timestamp struct {
	Time  time.Time
	State TimestampState
}

// At returns a valid Timestamp for t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, State: TimestampValid}
}

// Malformed returns a Timestamp in the malformed state.
func Malformed() Timestamp {
	return Timestamp{State: TimestampMalformed}
}

func (ts Timestamp) Valid() bool   { return ts.State == TimestampValid }
func (ts Timestamp) Present() bool { return ts.State != TimestampAbsent }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	*ts = Timestamp{}

	switch t {
	case bsontype.Null, bsontype.Undefined:
		return nil
	case bsontype.DateTime:
		if ms, ok := rv.DateTimeOK(); ok {
			*ts = At(time.UnixMilli(ms).UTC())
			return nil
		}
	case bsontype.Timestamp:
		if sec, _, ok := rv.TimestampOK(); ok {
			*ts = At(time.Unix(int64(sec), 0).UTC())
			return nil
		}
	case bsontype.Int64:
		if ms, ok := rv.Int64OK(); ok {
			*ts = At(time.UnixMilli(ms).UTC())
			return nil
		}
	case bsontype.Int32:
		if ms, ok := rv.Int32OK(); ok {
			*ts = At(time.UnixMilli(int64(ms)).UTC())
			return nil
		}
	case bsontype.Double:
		if ms, ok := rv.DoubleOK(); ok {
			*ts = At(time.UnixMilli(int64(ms)).UTC())
			return nil
		}
	case bsontype.String:
		if s, ok := rv.StringValueOK(); ok {
			*ts = parseTimestampString(s)
			return nil
		}
	case bsontype.EmbeddedDocument:
		if doc, ok := rv.DocumentOK(); ok {
			*ts = parseSecondsDoc(doc)
			return nil
		}
	}

	*ts = Malformed()
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler. Malformed values are
// written as null.
func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if ts.State != TimestampValid {
		return bson.MarshalValue(nil)
	}
	return bson.MarshalValue(ts.Time)
}

// MarshalJSON renders valid timestamps as RFC 3339 and everything else as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.State != TimestampValid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339))
}

func (ts Timestamp) String() string {
	switch ts.State {
	case TimestampValid:
		return ts.Time.Format(time.RFC3339)
	case TimestampMalformed:
		return "malformed"
	default:
		return ""
	}
}

func (ts Timestamp) GoString() string {
	return fmt.Sprintf("models.Timestamp{%s}", ts.String())
}

func parseTimestampString(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t.UTC())
		}
	}
	return Malformed()
}

// parseSecondsDoc handles the {seconds, nanoseconds} shape exported by
// document stores that serialize their native timestamp type.
func parseSecondsDoc(doc bson.Raw) Timestamp {
	var secs, nanos int64
	found := false
	for _, key := range []string{"seconds", "_seconds"} {
		if v, err := doc.LookupErr(key); err == nil {
			if n, ok := rawInt(v); ok {
				secs = n
				found = true
				break
			}
		}
	}
	if !found {
		return Malformed()
	}
	for _, key := range []string{"nanoseconds", "_nanoseconds"} {
		if v, err := doc.LookupErr(key); err == nil {
			if n, ok := rawInt(v); ok {
				nanos = n
				break
			}
		}
	}
	return At(time.Unix(secs, nanos).UTC())
}

func rawInt(v bson.RawValue) (int64, bool) {
	switch v.Type {
	case bsontype.Int32:
		return int64(v.Int32()), true
	case bsontype.Int64:
		return v.Int64(), true
	case bsontype.Double:
		return int64(v.Double()), true
	}
	return 0, false
}
