package decoder

// FieldType enumerates the wire types a program event field can carry.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeU8     FieldType = "u8"
	TypeU64    FieldType = "u64"
	TypePubkey FieldType = "pubkey"
)

// Field is one named slot in an event payload.
type Field struct {
	Name string
	Type FieldType
}

// Schema describes the sequential field layout of one program event.
// Fields are decoded in declaration order.
type Schema struct {
	Name   string
	Fields []Field
}

func NewSchema(name string, fields ...Field) Schema {
	return Schema{Name: name, Fields: fields}
}

// Schemas for the token program's emitted events.

func TokenCreatedSchema() Schema {
	return NewSchema("TokenCreatedEvent",
		Field{"token_name", TypeString},
		Field{"token_symbol", TypeString},
		Field{"token_uri", TypeString},
		Field{"mint_address", TypePubkey},
		Field{"creator", TypePubkey},
		Field{"decimals", TypeU8},
	)
}

func TokenTransferSchema() Schema {
	return NewSchema("TokenTransferEvent",
		Field{"transfer_type", TypeU8},
		Field{"mint_address", TypePubkey},
		Field{"user", TypePubkey},
		Field{"sol_amount", TypeU64},
		Field{"coin_amount", TypeU64},
	)
}
