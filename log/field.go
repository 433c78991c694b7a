package log

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// FieldType indicates type info about the Field. This enum might be extended in future releases.
// Do not rely on FieldType when implementing a Logger.
type FieldType int

const (
	InvalidType FieldType = iota
	IntType
	Int64Type
	StringType
	BoolType
	DurationType
	StringsType
	ErrorType
	AnyType
	StringerType
	endType
)

var fieldTypeNames = [...]string{
	InvalidType:  "invalid",
	IntType:      "int",
	Int64Type:    "int64",
	StringType:   "string",
	BoolType:     "bool",
	DurationType: "time.Duration",
	StringsType:  "[]string",
	ErrorType:    "error",
	AnyType:      "any",
	StringerType: "stringer",
}

func (ft FieldType) String() string {
	if ft < 0 || ft >= endType {
		return fieldTypeNames[InvalidType]
	}

	return fieldTypeNames[ft]
}

// Field represents typed log field (a key-value pair). Adapters should determine Field's type based on Type and
// call corresponding getter method for retrieving the value:
//
//	switch f.Type() {
//	case log.IntType:
//	    var i int = f.IntValue()
//	    // handle int value
//	case log.StringType:
//	    var s string = f.StringValue()
//	    // handle string value
//	//...
//	}
//
// Getter methods must not be called on fields with wrong Type (e.g. calling StringValue() on fields
// with IntType), they panic in that case.
type Field struct {
	ftype FieldType
	key   string

	vInt int64
	vStr string
	vAny interface{}
}

func (f Field) Type() FieldType {
	return f.ftype
}

func (f Field) Key() string {
	return f.key
}

func (f Field) checkType(want FieldType) {
	if f.ftype != want {
		panic(fmt.Sprintf("bad type. have: %s, want: %s", f.ftype, want))
	}
}

// IntValue is a value getter for fields with IntType type
func (f Field) IntValue() int {
	f.checkType(IntType)

	return int(f.vInt)
}

// Int64Value is a value getter for fields with Int64Type type
func (f Field) Int64Value() int64 {
	f.checkType(Int64Type)

	return f.vInt
}

// StringValue is a value getter for fields with StringType type
func (f Field) StringValue() string {
	f.checkType(StringType)

	return f.vStr
}

// BoolValue is a value getter for fields with BoolType type
func (f Field) BoolValue() bool {
	f.checkType(BoolType)

	return f.vInt != 0
}

// DurationValue is a value getter for fields with DurationType type
func (f Field) DurationValue() time.Duration {
	f.checkType(DurationType)

	return time.Duration(f.vInt)
}

// StringsValue is a value getter for fields with StringsType type
func (f Field) StringsValue() []string {
	f.checkType(StringsType)
	if f.vAny == nil {
		return nil
	}

	return f.vAny.([]string)
}

// ErrorValue is a value getter for fields with ErrorType type
func (f Field) ErrorValue() error {
	f.checkType(ErrorType)
	if f.vAny == nil {
		return nil
	}

	return f.vAny.(error)
}

// AnyValue is a value getter for fields with AnyType type
func (f Field) AnyValue() interface{} {
	f.checkType(AnyType)

	return f.vAny
}

// Stringer is a value getter for fields with StringerType type
func (f Field) Stringer() fmt.Stringer {
	f.checkType(StringerType)
	if f.vAny == nil {
		return nil
	}

	return f.vAny.(fmt.Stringer)
}

// String is a default string representation of the field value
func (f Field) String() string {
	switch f.ftype {
	case IntType, Int64Type:
		return strconv.FormatInt(f.vInt, 10)
	case StringType:
		return f.vStr
	case BoolType:
		return strconv.FormatBool(f.BoolValue())
	case DurationType:
		return f.DurationValue().String()
	case StringsType:
		return "[" + strings.Join(f.StringsValue(), ",") + "]"
	case ErrorType:
		if f.vAny == nil {
			return "<nil>"
		}

		return f.ErrorValue().Error()
	case AnyType:
		if f.vAny == nil {
			return "<nil>"
		}
		if s, ok := f.vAny.(fmt.Stringer); ok {
			return s.String()
		}

		return fmt.Sprint(f.vAny)
	case StringerType:
		if f.vAny == nil {
			return "<nil>"
		}

		return f.Stringer().String()
	default:
		panic("unknown FieldType")
	}
}

func Int(key string, value int) Field {
	return Field{ftype: IntType, key: key, vInt: int64(value)}
}

func Int64(key string, value int64) Field {
	return Field{ftype: Int64Type, key: key, vInt: value}
}

func String(key, value string) Field {
	return Field{ftype: StringType, key: key, vStr: value}
}

func Bool(key string, value bool) Field {
	var v int64
	if value {
		v = 1
	}

	return Field{ftype: BoolType, key: key, vInt: v}
}

func Duration(key string, value time.Duration) Field {
	return Field{ftype: DurationType, key: key, vInt: value.Nanoseconds()}
}

func Strings(key string, value []string) Field {
	return Field{ftype: StringsType, key: key, vAny: value}
}

// NamedError is the same as Error, but uses provided key instead of "error".
func NamedError(key string, value error) Field {
	return Field{ftype: ErrorType, key: key, vAny: value}
}

func Error(value error) Field {
	return NamedError("error", value)
}

func Any(key string, value interface{}) Field {
	return Field{ftype: AnyType, key: key, vAny: value}
}

func Stringer(key string, value fmt.Stringer) Field {
	return Field{ftype: StringerType, key: key, vAny: value}
}

func latencyField(clock clockwork.Clock, start time.Time) Field {
	return Duration("latency", clock.Since(start))
}

func appendFieldByCondition(condition bool, ifTrueField Field, fields ...Field) []Field {
	if condition {
		fields = append(fields, ifTrueField)
	}

	return fields
}
