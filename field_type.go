package schema

// DataType is the backend-neutral type of a field.
// It is a closed set: DataKind, Enum, Array, Dictionary and CustomType.
type DataType interface {
	isDataType()
}

// DataKind represents the scalar storage types.
type DataKind int

const (
	TypeBool DataKind = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeString
	TypeTime
	TypeDate
	TypeDatetime
	TypeFloat
	TypeDouble
	TypeData
	TypeUUID
	TypeJSON
)

var kindNames = [...]string{
	TypeBool:     "bool",
	TypeInt8:     "int8",
	TypeInt16:    "int16",
	TypeInt32:    "int32",
	TypeInt64:    "int64",
	TypeUint8:    "uint8",
	TypeUint16:   "uint16",
	TypeUint32:   "uint32",
	TypeUint64:   "uint64",
	TypeString:   "string",
	TypeTime:     "time",
	TypeDate:     "date",
	TypeDatetime: "datetime",
	TypeFloat:    "float",
	TypeDouble:   "double",
	TypeData:     "data",
	TypeUUID:     "uuid",
	TypeJSON:     "json",
}

func (k DataKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindByName looks up a DataKind by the name String returns.
func KindByName(name string) (DataKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return DataKind(k), true
		}
	}
	return 0, false
}

// Enum is a string field restricted to Cases.
type Enum struct {
	Name  string
	Cases []string
}

// Array holds an ordered list of Of values.
type Array struct {
	Of DataType
}

// Dictionary holds string-keyed values of Of. A nil Of means any value.
type Dictionary struct {
	Of DataType
}

// CustomType is passed to the backend verbatim.
type CustomType string

func (DataKind) isDataType()   {}
func (Enum) isDataType()       {}
func (Array) isDataType()      {}
func (Dictionary) isDataType() {}
func (CustomType) isDataType() {}
