package model

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Favorite is the recipe's favorite flag. Older documents stored it as the
// strings "true" and "false"; those decode to the matching boolean and are
// always written back as a real boolean. Only the exact string "true" is a
// favorite, matching what the store filters on.
type Favorite bool

func (f Favorite) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(bool(f))
}

func (f *Favorite) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeBoolean:
		*f = Favorite(raw.Boolean())
	case bson.TypeString:
		*f = Favorite(raw.StringValue() == "true")
	case bson.TypeNull, bson.TypeUndefined:
		*f = false
	default:
		return fmt.Errorf("cannot decode %s into favorite flag", t)
	}
	return nil
}
