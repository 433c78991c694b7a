package sqlerr

import "fmt"

// Kind identifies the failure class of an Error.
type Kind uint8

const (
	KindUndefined = Kind(iota)
	KindConnectionLost
	KindConnectionAlreadyClosed
	KindConnectionBusy
	KindResourceClosed
	KindResourceFreed
	KindInvalidParameterIndex
	KindParameterNotSet
	KindTypeMismatch
	KindColumnIndexOutOfRange
	KindNoCurrentRow
	KindUnknownTypeCode
	KindUnknownSavepoint
	KindTransactionAlreadyActive
	KindNoActiveTransaction
	KindCursorExhausted
	KindTruncation
	KindCancelled
	KindUnsupported
	KindInvalidArgument
	KindServer
)

var kindNames = [...]string{
	KindUndefined:                "undefined",
	KindConnectionLost:           "connection lost",
	KindConnectionAlreadyClosed:  "connection already closed",
	KindConnectionBusy:           "connection busy",
	KindResourceClosed:           "resource closed",
	KindResourceFreed:            "resource freed",
	KindInvalidParameterIndex:    "invalid parameter index",
	KindParameterNotSet:          "parameter not set",
	KindTypeMismatch:             "type mismatch",
	KindColumnIndexOutOfRange:    "column index out of range",
	KindNoCurrentRow:             "no current row",
	KindUnknownTypeCode:          "unknown type code",
	KindUnknownSavepoint:         "unknown savepoint",
	KindTransactionAlreadyActive: "transaction already active",
	KindNoActiveTransaction:      "no active transaction",
	KindCursorExhausted:          "cursor exhausted",
	KindTruncation:               "data truncation",
	KindCancelled:                "cancelled",
	KindUnsupported:              "unsupported",
	KindInvalidArgument:          "invalid argument",
	KindServer:                   "server error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("unknown kind %d", k)
}

// X/Open SQL states used by the client side of the taxonomy.
const (
	StateReadTruncation  = "01004"
	StateWriteTruncation = "22001"
	StateNullNotAllowed  = "22004"

	stateConnectionFailure       = "08006"
	stateConnectionDoesNotExist  = "08003"
	stateGeneralError            = "HY000"
	stateFunctionSequence        = "HY010"
	stateInvalidDescriptorIndex  = "07009"
	stateCountFieldIncorrect     = "07002"
	stateRestrictedDataType      = "07006"
	stateInvalidCursorState      = "24000"
	stateInvalidSQLDataType      = "HY004"
	stateInvalidSavepoint        = "3B001"
	stateActiveSQLTransaction    = "25001"
	stateInvalidTransactionState = "25000"
	stateOperationCanceled       = "HY008"
	stateFeatureNotSupported     = "0A000"
	stateInvalidAttributeValue   = "HY024"
)

func (k Kind) defaultState() string {
	switch k {
	case KindConnectionLost:
		return stateConnectionFailure
	case KindConnectionAlreadyClosed:
		return stateConnectionDoesNotExist
	case KindResourceClosed, KindResourceFreed:
		return stateFunctionSequence
	case KindInvalidParameterIndex, KindColumnIndexOutOfRange:
		return stateInvalidDescriptorIndex
	case KindParameterNotSet:
		return stateCountFieldIncorrect
	case KindTypeMismatch:
		return stateRestrictedDataType
	case KindNoCurrentRow, KindCursorExhausted:
		return stateInvalidCursorState
	case KindUnknownTypeCode:
		return stateInvalidSQLDataType
	case KindUnknownSavepoint:
		return stateInvalidSavepoint
	case KindTransactionAlreadyActive:
		return stateActiveSQLTransaction
	case KindNoActiveTransaction:
		return stateInvalidTransactionState
	case KindTruncation:
		return StateWriteTruncation
	case KindCancelled:
		return stateOperationCanceled
	case KindUnsupported:
		return stateFeatureNotSupported
	case KindInvalidArgument:
		return stateInvalidAttributeValue
	default:
		return stateGeneralError
	}
}
