package sqltypes

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"google.golang.org/protobuf/encoding/protowire"
)

var epoch = civil.Date{Year: 1970, Month: time.January, Day: 1}

type dateCodec struct{}

func (dateCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case civil.Date:
		return vv, vv.IsValid()
	case civil.DateTime:
		return vv.Date, vv.Date.IsValid()
	case time.Time:
		return civil.DateOf(vv), true
	case string:
		d, err := civil.ParseDate(strings.TrimSpace(vv))

		return d, err == nil
	default:
		return nil, false
	}
}

func (dateCodec) encode(v any) ([]byte, error) {
	days := v.(civil.Date).DaysSince(epoch)

	return protowire.AppendVarint(nil, protowire.EncodeZigZag(int64(days))), nil
}

func (dateCodec) decode(b []byte) (any, error) {
	u, err := consumeVarint(b)
	if err != nil {
		return nil, err
	}

	return epoch.AddDays(int(protowire.DecodeZigZag(u))), nil
}

type timeCodec struct{}

func (timeCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case civil.Time:
		return vv, vv.IsValid()
	case civil.DateTime:
		return vv.Time, vv.Time.IsValid()
	case time.Time:
		return civil.TimeOf(vv), true
	case string:
		t, err := civil.ParseTime(strings.TrimSpace(vv))

		return t, err == nil
	default:
		return nil, false
	}
}

func (timeCodec) encode(v any) ([]byte, error) {
	t := v.(civil.Time)
	nanos := (int64(t.Hour)*3600+int64(t.Minute)*60+int64(t.Second))*int64(time.Second) + int64(t.Nanosecond)

	return protowire.AppendVarint(nil, uint64(nanos)), nil
}

func (timeCodec) decode(b []byte) (any, error) {
	u, err := consumeVarint(b)
	if err != nil {
		return nil, err
	}
	if u >= uint64(24*time.Hour) {
		return nil, fmt.Errorf("time of day %d out of range", u)
	}
	nanos := int64(u)
	t := civil.Time{Nanosecond: int(nanos % int64(time.Second))}
	secs := nanos / int64(time.Second)
	t.Hour, t.Minute, t.Second = int(secs/3600), int(secs/60%60), int(secs%60)

	return t, nil
}

// timestampCodec encodes seconds and nanoseconds since the Unix epoch; the
// zoned flavor adds the UTC offset in seconds.
type timestampCodec struct {
	zoned bool
}

func (c timestampCodec) convert(v any) (any, bool) {
	switch vv := v.(type) {
	case time.Time:
		if !c.zoned {
			return vv.UTC(), true
		}

		return vv, true
	case civil.DateTime:
		return vv.In(time.UTC), vv.IsValid()
	case civil.Date:
		return vv.In(time.UTC), vv.IsValid()
	case string:
		s := strings.TrimSpace(vv)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return c.convert(t)
		}
		if dt, err := civil.ParseDateTime(strings.Replace(s, " ", "T", 1)); err == nil {
			return dt.In(time.UTC), true
		}

		return nil, false
	default:
		return nil, false
	}
}

func (c timestampCodec) encode(v any) ([]byte, error) {
	t := v.(time.Time)
	b := protowire.AppendVarint(nil, protowire.EncodeZigZag(t.Unix()))
	b = protowire.AppendVarint(b, uint64(t.Nanosecond()))
	if c.zoned {
		_, offset := t.Zone()
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(offset)))
	}

	return b, nil
}

func (c timestampCodec) decode(b []byte) (any, error) {
	secs, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	nanos, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, protowire.ParseError(n)
	}
	b = b[n:]
	if nanos >= uint64(time.Second) {
		return nil, fmt.Errorf("nanoseconds %d out of range", nanos)
	}
	t := time.Unix(protowire.DecodeZigZag(secs), int64(nanos)).UTC()
	if !c.zoned {
		if len(b) != 0 {
			return nil, errTrailingBytes
		}

		return t, nil
	}
	offset, err := consumeVarint(b)
	if err != nil {
		return nil, err
	}

	return t.In(time.FixedZone("", int(protowire.DecodeZigZag(offset)))), nil
}
