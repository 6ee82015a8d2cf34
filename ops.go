package sqlorm

/*
Comparison operator of a WHERE predicate. `In` takes a list and is the only
operator that does.
*/
type Op string

const (
	Eq    Op = `=`
	Gt    Op = `>`
	Gte   Op = `>=`
	Lt    Op = `<`
	Lte   Op = `<=`
	Neq   Op = `!=`
	In    Op = `IN`
	IsNot Op = `IS NOT`
	Not   Op = `NOT`
	Like  Op = `like`
)

func (self Op) valid() bool {
	switch self {
	case Eq, Gt, Gte, Lt, Lte, Neq, In, IsNot, Not, Like:
		return true
	default:
		return false
	}
}

// Keyword operators are space-separated from their operands, symbols aren't.
func (self Op) text() string {
	switch self {
	case In, IsNot, Not, Like:
		return ` ` + string(self) + ` `
	default:
		return string(self)
	}
}

// Boolean connector between predicates.
type Conj string

const (
	And Conj = `AND`
	Or  Conj = `OR`
)

func (self Conj) valid() bool { return self == And || self == Or }

// Sort direction of ORDER BY.
type Dir string

const (
	Asc  Dir = `ASC`
	Desc Dir = `DESC`
)

func (self Dir) valid() bool { return self == Asc || self == Desc }

// Column type accepted by `CREATE TABLE` and `ALTER TABLE ... ADD`.
type DataType string

const (
	TypeInteger DataType = `INTEGER`
	TypeLong    DataType = `LONG`
	TypeFloat   DataType = `FLOAT`
	TypeVarchar DataType = `VARCHAR`
	TypeText    DataType = `TEXT`
)

func (self DataType) valid() bool {
	switch self {
	case TypeInteger, TypeLong, TypeFloat, TypeVarchar, TypeText:
		return true
	default:
		return false
	}
}

/*
Column descriptor consumed by `(*Builder).CreateTable`. The JSON tags allow
loading table definitions from YAML files.
*/
type Field struct {
	Name       string   `json:"field"`
	Type       DataType `json:"type"`
	PrimaryKey bool     `json:"isKey,omitempty"`
	NotNull    bool     `json:"isNotNull,omitempty"`
}
